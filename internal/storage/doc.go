package storage

// Package storage provides the optional delivery journal: an append-only
// record of per-user outcomes of each daily delivery run. It is
// observability only; the subscription store never reads it.
