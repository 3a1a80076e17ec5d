// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
)

const insertEventQuery = "INSERT INTO event(seq, name, topic, participant, amount, timestamp) VALUES (?, ?, ?, ?, ?, ?)"

type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection keeps an in-memory db alive and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create event table")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// NewestOpNumber returns the number of the last operation written, 0 if none.
func (db *LogDB) NewestOpNumber() (uint32, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return sequence(seq.Int64).OpNumber(), nil
}

// Prepare creates a batch for the events of one operation.
func (db *LogDB) Prepare() *Batch {
	return &Batch{db: db}
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT seq, name, topic, participant, amount, timestamp FROM event ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := "SELECT seq, name, topic, participant, amount, timestamp FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND timestamp >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND timestamp <= ? "
		}
	}
	if filter.Participant != nil {
		args = append(args, filter.Participant.Bytes())
		stmt += " AND participant = ? "
	}
	if filter.Topic != nil {
		args = append(args, filter.Topic.Bytes())
		stmt += " AND topic = ? "
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq         int64
			name        string
			topic       []byte
			participant []byte
			amount      []byte
			timestamp   uint64
		)
		if err := rows.Scan(
			&seq,
			&name,
			&topic,
			&participant,
			&amount,
			&timestamp,
		); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			OpNumber:    sequence(seq).OpNumber(),
			Index:       sequence(seq).Index(),
			Name:        name,
			Topic:       ledger.BytesToBytes32(topic),
			Participant: ledger.BytesToAddress(participant),
			Amount:      new(big.Int).SetBytes(amount),
			Timestamp:   timestamp,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Batch collects the events of one operation and writes them in a single db transaction.
type Batch struct {
	db     *LogDB
	events []*Event
}

// Add appends an event.
func (b *Batch) Add(name string, topic ledger.Bytes32, participant ledger.Address, amount *big.Int, timestamp uint64) *Batch {
	b.events = append(b.events, &Event{
		Index:       uint32(len(b.events)),
		Name:        name,
		Topic:       topic,
		Participant: participant,
		Amount:      new(big.Int).Set(amount),
		Timestamp:   timestamp,
	})
	return b
}

// Events returns the uncommitted events. Commit fills in their operation number.
func (b *Batch) Events() []*Event {
	return b.events
}

// Len returns the count of uncommitted events.
func (b *Batch) Len() int {
	return len(b.events)
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit writes the events under the next operation number and returns it.
func (b *Batch) Commit() (uint32, error) {
	if len(b.events) == 0 {
		return 0, nil
	}
	newest, err := b.db.NewestOpNumber()
	if err != nil {
		return 0, err
	}
	opNum := newest + 1

	insert, err := b.db.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return 0, err
	}
	err = b.execInTx(func(tx *sql.Tx) error {
		stmt := tx.Stmt(insert)
		for _, ev := range b.events {
			var participant []byte
			if !ev.Participant.IsZero() {
				participant = ev.Participant.Bytes()
			}
			if _, err := stmt.Exec(
				int64(newSequence(opNum, ev.Index)),
				ev.Name,
				ev.Topic.Bytes(),
				participant,
				ev.Amount.Bytes(),
				ev.Timestamp,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "commit events")
	}
	for _, ev := range b.events {
		ev.OpNumber = opNum
	}
	b.events = nil
	return opNum, nil
}
