package explorer

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/go-errors/errors"
	"github.com/gorilla/websocket"
)

// request is the wire envelope the remote explorer expects, grounded on
// the {command, id, params} shape of the reference client.
type request struct {
	Command string        `json:"command"`
	ID      uint64        `json:"id"`
	Params  []interface{} `json:"params"`
}

// response is the wire envelope the remote explorer replies with.
type response struct {
	ID     uint64          `json:"id"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// WSClient is a websocket-backed Explorer implementation. One read-loop
// goroutine dispatches responses to pending callers by id; writes are
// serialized behind a mutex, the same discipline the reference websocket
// wrapper uses for its JSON connection.
type WSClient struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	nextID  uint64

	pendingMu sync.Mutex
	pending   map[uint64]chan response

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial opens a websocket connection to a remote explorer at url.
func Dial(url string) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Errorf("dialing explorer at %s: %v", url, err)
	}
	c := &WSClient{
		conn:    conn,
		pending: make(map[uint64]chan response),
		closed:  make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *WSClient) readLoop() {
	for {
		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			if websocket.IsUnexpectedCloseError(err) || err == io.ErrUnexpectedEOF {
				log.Warnf("explorer connection closed: %v", err)
			} else {
				log.Errorf("reading explorer response: %v", err)
			}
			c.closeOnce.Do(func() { close(c.closed) })
			return
		}

		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMu.Unlock()

		if ok {
			ch <- resp
		}
	}
}

// Close shuts down the underlying connection.
func (c *WSClient) Close() error {
	return c.conn.Close()
}

// call sends command with params and blocks for its matching response,
// honoring ctx's deadline.
func (c *WSClient) call(ctx context.Context, command string, params ...interface{}) (json.RawMessage, error) {
	id := atomic.AddUint64(&c.nextID, 1)
	ch := make(chan response, 1)

	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(request{Command: command, ID: id, Params: params})
	c.writeMu.Unlock()
	if err != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, errors.Errorf("sending %s request: %v", command, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return nil, errors.Errorf("explorer error for %s: %s", command, resp.Error)
		}
		return resp.Result, nil
	case <-c.closed:
		return nil, errors.New("explorer connection closed")
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, ctx.Err()
	}
}

// LastHeight implements Explorer.
func (c *WSClient) LastHeight(ctx context.Context) (int32, error) {
	raw, err := c.call(ctx, "fetch_last_height")
	if err != nil {
		return 0, err
	}
	var height int32
	if err := json.Unmarshal(raw, &height); err != nil {
		return 0, errors.Errorf("decoding last_height response: %v", err)
	}
	return height, nil
}

// BlockHeader implements Explorer.
func (c *WSClient) BlockHeader(ctx context.Context, height int32) (*BlockHeader, error) {
	raw, err := c.call(ctx, "fetch_block_header", height)
	if err != nil {
		return nil, err
	}
	var hdr struct {
		Hash      string `json:"hash"`
		PrevHash  string `json:"previous_block_hash"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, errors.Errorf("decoding block_header response: %v", err)
	}
	hash, err := chainhash.NewHashFromStr(hdr.Hash)
	if err != nil {
		return nil, err
	}
	prev, err := chainhash.NewHashFromStr(hdr.PrevHash)
	if err != nil {
		return nil, err
	}
	return &BlockHeader{
		Height:    height,
		Hash:      *hash,
		PrevHash:  *prev,
		Timestamp: hdr.Timestamp,
	}, nil
}

// History implements Explorer.
func (c *WSClient) History(ctx context.Context, address string) ([]HistoryEntry, error) {
	raw, err := c.call(ctx, "fetch_history", address)
	if err != nil {
		return nil, err
	}
	var wireEntries []struct {
		TxHash      string  `json:"hash"`
		Index       uint32  `json:"index"`
		Height      int32   `json:"height"`
		IsOutput    bool    `json:"is_output"`
		Value       int64   `json:"value"`
		SpendTxHash *string `json:"spend_hash,omitempty"`
		SpendIndex  uint32  `json:"spend_index,omitempty"`
	}
	if err := json.Unmarshal(raw, &wireEntries); err != nil {
		return nil, errors.Errorf("decoding history response: %v", err)
	}

	entries := make([]HistoryEntry, 0, len(wireEntries))
	for _, e := range wireEntries {
		hash, err := chainhash.NewHashFromStr(e.TxHash)
		if err != nil {
			return nil, err
		}
		entry := HistoryEntry{
			TxHash:   *hash,
			Index:    e.Index,
			Height:   e.Height,
			IsOutput: e.IsOutput,
			Value:    e.Value,
		}
		if e.SpendTxHash != nil {
			spendHash, err := chainhash.NewHashFromStr(*e.SpendTxHash)
			if err != nil {
				return nil, err
			}
			entry.SpendTxHash = spendHash
			entry.SpendIndex = e.SpendIndex
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Transaction implements Explorer.
func (c *WSClient) Transaction(ctx context.Context, hash chainhash.Hash) (*wire.MsgTx, error) {
	raw, err := c.call(ctx, "fetch_transaction", hash.String())
	if err != nil {
		return nil, err
	}
	var hexTx string
	if err := json.Unmarshal(raw, &hexTx); err != nil {
		return nil, errors.Errorf("decoding transaction response: %v", err)
	}
	txBytes, err := hex.DecodeString(hexTx)
	if err != nil {
		return nil, errors.Errorf("decoding transaction hex: %v", err)
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return nil, errors.Errorf("parsing transaction: %v", err)
	}
	return tx, nil
}

// Stealth implements Explorer.
func (c *WSClient) Stealth(ctx context.Context, prefix string, fromHeight int32) ([]StealthEntry, error) {
	raw, err := c.call(ctx, "fetch_stealth", prefix, fromHeight)
	if err != nil {
		return nil, err
	}
	var wireEntries []struct {
		TxHash       string `json:"hash"`
		EphemeralKey string `json:"ephemeral_key"`
	}
	if err := json.Unmarshal(raw, &wireEntries); err != nil {
		return nil, errors.Errorf("decoding stealth response: %v", err)
	}

	entries := make([]StealthEntry, 0, len(wireEntries))
	for _, e := range wireEntries {
		hash, err := chainhash.NewHashFromStr(e.TxHash)
		if err != nil {
			return nil, err
		}
		key, err := hex.DecodeString(e.EphemeralKey)
		if err != nil {
			return nil, errors.Errorf("decoding ephemeral key: %v", err)
		}
		entries = append(entries, StealthEntry{TxHash: *hash, EphemeralKey: key})
	}
	return entries, nil
}

// Broadcast implements Explorer.
func (c *WSClient) Broadcast(ctx context.Context, tx *wire.MsgTx) error {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return errors.Errorf("serializing broadcast transaction: %v", err)
	}
	_, err := c.call(ctx, "broadcast", hex.EncodeToString(buf.Bytes()))
	return err
}
