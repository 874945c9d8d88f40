// Package db provides the embedded schema for the postgres key-value store.
package db

import _ "embed"

// Schema contains the DDL for the storefront key-value table.
//
//go:embed migrations/001_kv.sql
var Schema string
