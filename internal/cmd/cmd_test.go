// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotandev/tokenctl/internal/scval"
)

type fakeNode struct {
	t *testing.T

	mu      sync.Mutex
	methods []string

	// contract function name -> return value
	returns    map[string]xdr.ScVal
	accounts   map[string]int64
	passphrase string
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		ID     uint64          `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("decode request: %v", err)
		return
	}
	f.mu.Lock()
	f.methods = append(f.methods, req.Method)
	f.mu.Unlock()

	result, rpcErr := f.handle(req.Method, req.Params)
	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeNode) handle(method string, params json.RawMessage) (interface{}, map[string]interface{}) {
	switch method {
	case "getHealth":
		return map[string]interface{}{"status": "healthy", "latestLedger": 2000, "oldestLedger": 1000, "ledgerRetentionWindow": 1000}, nil
	case "getNetwork":
		return map[string]interface{}{"passphrase": f.passphrase, "protocolVersion": 22}, nil
	case "getVersionInfo":
		return map[string]interface{}{"version": "22.1.2-8a2c1e5", "protocolVersion": 22}, nil
	case "getLatestLedger":
		return map[string]interface{}{"id": "abcd", "protocolVersion": 22, "sequence": 2000}, nil
	case "getLedgerEntries":
		return f.ledgerEntries(params)
	case "simulateTransaction":
		return f.simulate(params)
	case "sendTransaction":
		return map[string]interface{}{"status": "PENDING", "hash": "c0ffee", "latestLedger": 2000, "latestLedgerCloseTime": "1700000000"}, nil
	case "getTransaction":
		return map[string]interface{}{"status": "SUCCESS", "latestLedger": 2001, "latestLedgerCloseTime": "1700000005", "oldestLedger": 1000, "ledger": 2001, "createdAt": "1700000005"}, nil
	}
	return nil, map[string]interface{}{"code": -32601, "message": "method not found"}
}

func (f *fakeNode) ledgerEntries(params json.RawMessage) (interface{}, map[string]interface{}) {
	var req struct {
		Keys []string `json:"keys"`
	}
	require.NoError(f.t, json.Unmarshal(params, &req))
	entries := []map[string]interface{}{}
	for _, raw := range req.Keys {
		var key xdr.LedgerKey
		require.NoError(f.t, xdr.SafeUnmarshalBase64(raw, &key))
		address := key.Account.AccountId.Address()
		seq, ok := f.accounts[address]
		if !ok {
			continue
		}
		data, err := xdr.MarshalBase64(xdr.LedgerEntryData{
			Type:    xdr.LedgerEntryTypeAccount,
			Account: &xdr.AccountEntry{AccountId: key.Account.AccountId, Balance: 100_0000000, SeqNum: xdr.SequenceNumber(seq)},
		})
		require.NoError(f.t, err)
		entries = append(entries, map[string]interface{}{"key": raw, "xdr": data, "lastModifiedLedgerSeq": 1500})
	}
	return map[string]interface{}{"entries": entries, "latestLedger": 2000}, nil
}

func (f *fakeNode) simulate(params json.RawMessage) (interface{}, map[string]interface{}) {
	var req struct {
		Transaction string `json:"transaction"`
	}
	require.NoError(f.t, json.Unmarshal(params, &req))
	var env xdr.TransactionEnvelope
	require.NoError(f.t, xdr.SafeUnmarshalBase64(req.Transaction, &env))
	fn := string(env.Operations()[0].Body.MustInvokeHostFunctionOp().HostFunction.MustInvokeContract().FunctionName)

	ret, ok := f.returns[fn]
	if !ok {
		ret = xdr.ScVal{Type: xdr.ScValTypeScvVoid}
	}
	retRaw, err := xdr.MarshalBase64(ret)
	require.NoError(f.t, err)
	data := xdr.SorobanTransactionData{ResourceFee: 3000}
	data.Resources.Instructions = 120000
	dataRaw, err := xdr.MarshalBase64(data)
	require.NoError(f.t, err)

	return map[string]interface{}{
		"transactionData": dataRaw,
		"minResourceFee":  "3000",
		"results":         []map[string]interface{}{{"auth": []string{}, "xdr": retRaw}},
		"cost":            map[string]interface{}{"cpuInsns": "110000", "memBytes": "2048"},
		"latestLedger":    2000,
	}, nil
}

func (f *fakeNode) called(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.methods {
		if m == method {
			n++
		}
	}
	return n
}

func newFakeNode(t *testing.T) (*fakeNode, string) {
	t.Helper()
	f := &fakeNode{
		t:          t,
		returns:    map[string]xdr.ScVal{},
		accounts:   map[string]int64{},
		passphrase: network.TestNetworkPassphrase,
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func testContract(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	raw[0] = 9
	id, err := strkey.Encode(strkey.VersionByteContract, raw)
	require.NoError(t, err)
	return id
}

// run executes tokenctl with an isolated config file.
func run(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runApp(t, config, nil, args...)
	return out, err
}

// runApp is run with access to the app before it executes. It returns
// stdout and stderr.
func runApp(t *testing.T, config string, configure func(*app), args ...string) (string, string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokenctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

	var out, errOut bytes.Buffer
	root, a := newRootCmd()
	if configure != nil {
		configure(a)
	}
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", path, "--log-level", "error"}, args...))
	err := a.execute(context.Background(), root)
	return out.String(), errOut.String(), err
}

func mustI128(t *testing.T, v int64) xdr.ScVal {
	t.Helper()
	val, err := scval.I128(big.NewInt(v))
	require.NoError(t, err)
	return val
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tokenctl")
	assert.Contains(t, out, "Version: dev")
}

func TestInfoCommand(t *testing.T) {
	node, url := newFakeNode(t)
	node.returns["name"] = scval.String("Example Token")
	node.returns["symbol"] = scval.Symbol("EXT")
	node.returns["decimals"] = scval.U32(7)
	node.returns["total_supply"] = mustI128(t, 15_000_000)

	out, err := run(t, "", "info", "--rpc-url", url, "--contract", testContract(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Name:         Example Token")
	assert.Contains(t, out, "Symbol:       EXT")
	assert.Contains(t, out, "Decimals:     7")
	assert.Contains(t, out, "Total supply: 1.5 EXT")
	assert.Equal(t, 4, node.called("simulateTransaction"))
	assert.Zero(t, node.called("getLedgerEntries"))
}

func TestInfoRequiresContract(t *testing.T) {
	_, url := newFakeNode(t)
	_, err := run(t, "", "info", "--rpc-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract id is not configured")
}

func TestBalanceOfWallet(t *testing.T) {
	node, url := newFakeNode(t)
	kp := keypair.MustRandom()
	node.accounts[kp.Address()] = 10
	node.returns["balance"] = mustI128(t, 4200)

	config := "rpc_url: " + url + "\ncontract_id: " + testContract(t) + "\n"
	out, err := run(t, config, "balance", "--raw", "--secret", kp.Seed())
	require.NoError(t, err)
	assert.Equal(t, "4200\n", out)
	assert.Equal(t, 1, node.called("getLedgerEntries"))
}

func TestTransferCommand(t *testing.T) {
	node, url := newFakeNode(t)
	kp := keypair.MustRandom()
	node.accounts[kp.Address()] = 10

	config := "rpc_url: " + url + "\ncontract_id: " + testContract(t) + "\npoll:\n  attempts: 3\n  interval: 1ms\n"
	out, err := run(t, config, "transfer", keypair.MustRandom().Address(), "250", "--secret", kp.Seed(), "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ transfer confirmed")
	assert.Contains(t, out, "Hash:   c0ffee")
	assert.Contains(t, out, "Ledger: 2001")
	assert.Contains(t, out, "Resource Report: transfer")
	assert.Equal(t, 1, node.called("sendTransaction"))
	assert.Equal(t, 1, node.called("getTransaction"))
}

func TestTransferDryRun(t *testing.T) {
	node, url := newFakeNode(t)
	kp := keypair.MustRandom()
	node.accounts[kp.Address()] = 10

	config := "rpc_url: " + url + "\ncontract_id: " + testContract(t) + "\n"
	out, err := run(t, config, "transfer", keypair.MustRandom().Address(), "250", "--secret", kp.Seed(), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run: transfer was not submitted")
	assert.Zero(t, node.called("sendTransaction"))
}

func TestApproveUsesLatestLedger(t *testing.T) {
	node, url := newFakeNode(t)
	kp := keypair.MustRandom()
	node.accounts[kp.Address()] = 10

	config := "rpc_url: " + url + "\ncontract_id: " + testContract(t) + "\n"
	_, err := run(t, config, "approve", keypair.MustRandom().Address(), "5", "--secret", kp.Seed(), "--expires-in", "100", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, 1, node.called("getLatestLedger"))

	_, err = run(t, config, "approve", keypair.MustRandom().Address(), "5", "--secret", kp.Seed(), "--expiration-ledger", "9000", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, 1, node.called("getLatestLedger"))
}

func TestWriteWithoutSigner(t *testing.T) {
	_, url := newFakeNode(t)
	config := "rpc_url: " + url + "\ncontract_id: " + testContract(t) + "\n"
	_, err := run(t, config, "burn", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no --from address and no wallet")
}

func TestHealthCommand(t *testing.T) {
	node, url := newFakeNode(t)
	node.passphrase = network.PublicNetworkPassphrase

	out, err := run(t, "", "health", "--rpc-url", url)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:   healthy")
	assert.Contains(t, out, "Ledgers:  1000 - 2000")
	assert.Contains(t, out, "configured passphrase is")
	assert.Contains(t, out, "Version:  22.1.2-8a2c1e5\n")
}

func TestWalletStatus(t *testing.T) {
	out, err := run(t, "", "wallet", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: no")

	kp := keypair.MustRandom()
	out, err = run(t, "", "wallet", "status", "--secret", kp.Seed())
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: yes")
	assert.Contains(t, out, kp.Address())
	assert.NotContains(t, out, "⚠️")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	_, err := run(t, "network: devnet\n", "info")
	assert.Error(t, err)
}

func TestFailedCommandFlushesTraces(t *testing.T) {
	var exports atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/v1/traces" {
			exports.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	node, url := newFakeNode(t)
	node.returns["name"] = scval.String("Example Token")
	node.returns["symbol"] = scval.Symbol("EXT")
	node.returns["decimals"] = scval.U32(7)
	// total_supply returns void, so info fails after three successful views

	config := "rpc_url: " + url + "\ncontract_id: " + testContract(t) +
		"\ntelemetry:\n  otlp_endpoint: " + collector.URL + "\n  insecure: true\n"
	_, err := run(t, config, "info")
	require.Error(t, err)
	assert.GreaterOrEqual(t, exports.Load(), int32(1))
}

func TestTransferDrawsProgressOnTerminal(t *testing.T) {
	node, url := newFakeNode(t)
	kp := keypair.MustRandom()
	node.accounts[kp.Address()] = 10

	config := "rpc_url: " + url + "\ncontract_id: " + testContract(t) + "\npoll:\n  attempts: 3\n  interval: 1ms\n"
	terminal := func(a *app) {
		a.terminal = func(io.Writer) bool { return true }
	}
	_, stderr, err := runApp(t, config, terminal, "transfer", keypair.MustRandom().Address(), "250", "--secret", kp.Seed())
	require.NoError(t, err)
	assert.Contains(t, stderr, "waiting for confirmation")
}

func TestProgressObserverStepsPerAttempt(t *testing.T) {
	var buf bytes.Buffer
	bar, observe := newProgressObserver(&buf, 3)

	observe(1, 3)
	assert.False(t, bar.IsFinished())
	assert.Contains(t, buf.String(), "waiting for confirmation")

	observe(2, 3)
	assert.False(t, bar.IsFinished())
	observe(3, 3)
	assert.True(t, bar.IsFinished())
}

func TestWalletURLFlagSelectsBridge(t *testing.T) {
	closed := httptest.NewServer(nil)
	bridgeURL := closed.URL
	closed.Close()

	out, err := run(t, "wallet:\n  mode: keypair\n", "wallet", "status", "--wallet-url", bridgeURL)
	require.NoError(t, err)
	assert.Contains(t, out, "Mode:      bridge")
	assert.Contains(t, out, "Connected: no")
}

func TestRPCVersionSupported(t *testing.T) {
	cases := map[string]bool{
		"21.0.0":         true,
		"v22.1.2":        true,
		"22.1.2-8a2c1e5": true,
		"20.3.1":         false,
	}
	for v, want := range cases {
		got, err := rpcVersionSupported(v)
		require.NoError(t, err, v)
		assert.Equal(t, want, got, v)
	}
	_, err := rpcVersionSupported("unknown")
	assert.Error(t, err)
}
