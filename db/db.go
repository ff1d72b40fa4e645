// Package db carries the PostgreSQL schema as an embedded asset so the
// integration harness and deployment tooling apply the exact same DDL.
package db

import _ "embed"

//go:embed schema.sql
var Schema string
