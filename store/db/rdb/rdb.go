// Package rdb implements store.Driver on database/sql. The sqlite and postgres
// drivers share it and differ only in how they open the connection, render
// bind parameters and detect an initialized schema.
package rdb

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Placeholder renders the n-th (1-based) bind parameter.
type Placeholder func(n int) string

// QuestionMark is the sqlite placeholder style.
func QuestionMark(int) string {
	return "?"
}

// Dollar is the postgres placeholder style.
func Dollar(n int) string {
	return "$" + strconv.Itoa(n)
}

type DB struct {
	db          *sql.DB
	placeholder Placeholder
}

func New(db *sql.DB, placeholder Placeholder) *DB {
	return &DB{
		db:          db,
		placeholder: placeholder,
	}
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, d.placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

// next renders the placeholder for the argument about to be appended.
func (d *DB) next(args []any) string {
	return d.placeholder(len(args) + 1)
}

func now() int64 {
	return time.Now().Unix()
}

type rowScanner interface {
	Scan(dest ...any) error
}
