package bscrpc

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBackend struct {
	native        *big.Int
	nativeErr     error
	tokenRaw      *big.Int
	decimals      uint8
	callErr       error
	block         uint64
	decimalsCalls int
	lastCallTo    common.Address
	hold          chan struct{}
}

func (f *fakeBackend) BalanceAt(ctx context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	if f.hold != nil {
		select {
		case <-f.hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.native, f.nativeErr
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	f.lastCallTo = *msg.To
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "decimals":
		f.decimalsCalls++
		return method.Outputs.Pack(f.decimals)
	default:
		return method.Outputs.Pack(f.tokenRaw)
	}
}

func (f *fakeBackend) BlockNumber(context.Context) (uint64, error) {
	return f.block, nil
}

var holder = common.HexToAddress("0x8894E0a0c962CB723c1976a4421c95949bE2D4E3")

func newTestClient(t *testing.T, backend Backend, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(backend, Config{Timeout: timeout}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Run("defaults to the USDT contract", func(t *testing.T) {
		c := newTestClient(t, &fakeBackend{}, 0)
		assert.Equal(t, common.HexToAddress(DefaultTokenAddress), c.TokenAddress())
		assert.Equal(t, defaultTimeout, c.timeout)
	})

	t.Run("rejects malformed token contract", func(t *testing.T) {
		_, err := NewClient(&fakeBackend{}, Config{TokenAddress: "0x123"}, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})
}

func TestNativeBalance(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)

	t.Run("returns wei balance", func(t *testing.T) {
		c := newTestClient(t, &fakeBackend{native: wei}, time.Second)
		got, err := c.NativeBalance(context.Background(), holder)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Cmp(wei))
	})

	t.Run("wraps node errors", func(t *testing.T) {
		c := newTestClient(t, &fakeBackend{nativeErr: errors.New("boom")}, time.Second)
		_, err := c.NativeBalance(context.Background(), holder)
		assert.ErrorIs(t, err, ErrRPCCall)
	})

	t.Run("bounds calls by timeout", func(t *testing.T) {
		c := newTestClient(t, &fakeBackend{native: wei, hold: make(chan struct{})}, 20*time.Millisecond)
		_, err := c.NativeBalance(context.Background(), holder)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestTokenBalance(t *testing.T) {
	raw, _ := new(big.Int).SetString("2500000000000000000000", 10)

	t.Run("reads balance and decimals from the contract", func(t *testing.T) {
		backend := &fakeBackend{tokenRaw: raw, decimals: 18}
		c := newTestClient(t, backend, time.Second)

		got, decimals, err := c.TokenBalance(context.Background(), holder)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Cmp(raw))
		assert.Equal(t, uint8(18), decimals)
		assert.Equal(t, common.HexToAddress(DefaultTokenAddress), backend.lastCallTo)
	})

	t.Run("caches decimals after first read", func(t *testing.T) {
		backend := &fakeBackend{tokenRaw: raw, decimals: 6}
		c := newTestClient(t, backend, time.Second)

		for i := 0; i < 3; i++ {
			_, _, err := c.TokenBalance(context.Background(), holder)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, backend.decimalsCalls)
	})

	t.Run("wraps contract call errors", func(t *testing.T) {
		c := newTestClient(t, &fakeBackend{callErr: errors.New("execution reverted")}, time.Second)
		_, _, err := c.TokenBalance(context.Background(), holder)
		assert.ErrorIs(t, err, ErrRPCCall)
	})
}

func TestBlockNumber(t *testing.T) {
	c := newTestClient(t, &fakeBackend{block: 42_000_000}, time.Second)
	n, err := c.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(42_000_000), n)
}
