package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"seathub/internal/infra/persistence/memory"
	"seathub/pkg/domain"
)

// stubConn is a minimal database/sql driver backed by a map, recording every
// statement so tests can assert on DDL and upserts without a live server.
type stubConn struct {
	mu       sync.Mutex
	state    map[string][]byte
	execs    []string
	failExec bool
}

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return nil }

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare unsupported in stub")
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }
func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}
func (c *stubConn) Ping(context.Context) error { return nil }

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, errors.New("exec fail")
	}
	if strings.Contains(query, "INSERT INTO state") {
		bucket, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		c.state[bucket] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !strings.Contains(query, "FROM state") {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	rows := &stubRows{}
	for bucket, payload := range c.state {
		rows.data = append(rows.data, [2]any{bucket, append([]byte(nil), payload...)})
	}
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	data [][2]any
	pos  int
}

func (r *stubRows) Columns() []string { return []string{"bucket", "payload"} }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	dest[0] = r.data[r.pos][0]
	dest[1] = r.data[r.pos][1]
	r.pos++
	return nil
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{state: map[string][]byte{}}
	return sql.OpenDB(stubConnector{conn: conn}), conn
}

func TestNewStoreEnsuresTableAndLoadsSnapshot(t *testing.T) {
	db, conn := newStubDB()
	owner := domain.Address("alice")
	seed := memory.Snapshot{
		Owner:  &owner,
		Tokens: map[string]domain.Token{"1": {ID: "1", Owner: "alice"}},
	}
	for bucket, value := range map[string]any{"owner": seed.Owner, "tokens": seed.Tokens} {
		data, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("marshal %s: %v", bucket, err)
		}
		conn.state[bucket] = data
	}

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.View(context.Background(), func(view domain.TransactionView) error {
		if got, ok := view.Owner(); !ok || got != "alice" {
			t.Fatalf("expected hydrated owner alice, got %q", got)
		}
		if _, ok := view.FindToken("1"); !ok {
			t.Fatal("expected hydrated token 1")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}

	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.execs)
	}
}

func TestRunInTransactionPersistsBuckets(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.SetOwner("alice"); err != nil {
			return err
		}
		return tx.PutToken(domain.Token{ID: "7", Owner: "alice"})
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	conn.mu.Lock()
	tokens := conn.state["tokens"]
	conn.mu.Unlock()
	var decoded map[string]domain.Token
	if err := json.Unmarshal(tokens, &decoded); err != nil {
		t.Fatalf("decode persisted tokens: %v", err)
	}
	if _, ok := decoded["7"]; !ok {
		t.Fatalf("expected token 7 in persisted bucket, got %s", tokens)
	}
}

func TestRunInTransactionStopsOnUserError(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	before := len(conn.state)
	userErr := fmt.Errorf("user fail")
	if err := store.RunInTransaction(context.Background(), func(domain.Transaction) error { return userErr }); !errors.Is(err, userErr) {
		t.Fatalf("expected user error to propagate, got %v", err)
	}
	if len(conn.state) != before {
		t.Fatal("expected no persistence when user fn errors")
	}
}

func TestRunInTransactionSurfacesPersistFailure(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failExec = true
	err = store.RunInTransaction(context.Background(), func(domain.Transaction) error { return nil })
	var se domain.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected storage error when exec fails, got %v", err)
	}
}

func TestNewStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("open fail")
	})
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "open fail") {
		t.Fatalf("expected open error, got %v", err)
	}
}
