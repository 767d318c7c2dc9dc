package store

// Schema DDL and prepared statements, following the table layout and
// queries: block, sign, and light tables with unique indexes keyed on
// position.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS block (
	p INTEGER NOT NULL,
	q INTEGER NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	z INTEGER NOT NULL,
	w INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS block_pqxyz_idx ON block (p, q, x, y, z);

CREATE TABLE IF NOT EXISTS sign (
	p INTEGER NOT NULL,
	q INTEGER NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	z INTEGER NOT NULL,
	face INTEGER NOT NULL,
	text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS sign_pq_idx ON sign (p, q);
CREATE UNIQUE INDEX IF NOT EXISTS sign_xyzface_idx ON sign (x, y, z, face);

CREATE TABLE IF NOT EXISTS light (
	p INTEGER NOT NULL,
	q INTEGER NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	z INTEGER NOT NULL,
	w INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS light_pqxyz_idx ON light (p, q, x, y, z);
`

const (
	queryLoadBlocks = `SELECT p, q, x, y, z, w FROM block`
	queryLoadSigns  = `SELECT p, q, x, y, z, face, text FROM sign`
	queryLoadLights = `SELECT p, q, x, y, z, w FROM light`

	querySetBlock = `INSERT OR REPLACE INTO block (p, q, x, y, z, w) VALUES (?, ?, ?, ?, ?, ?)`
	querySetSign  = `INSERT OR REPLACE INTO sign (p, q, x, y, z, face, text) VALUES (?, ?, ?, ?, ?, ?, ?)`
	querySetLight = `INSERT OR REPLACE INTO light (p, q, x, y, z, w) VALUES (?, ?, ?, ?, ?, ?)`

	queryDeleteSigns           = `DELETE FROM sign WHERE x = ? AND y = ? AND z = ?`
	queryDeleteIndividualSign  = `DELETE FROM sign WHERE x = ? AND y = ? AND z = ? AND face = ?`
)

// blockRow/signRow/lightRow mirror the SELECT column order above for sqlx
// to scan into directly.
type blockRow struct {
	P, Q, X, Y, Z int32
	W             int8
}

type signRow struct {
	P, Q, X, Y, Z int32
	Face          uint8
	Text          string
}

type lightRow struct {
	P, Q, X, Y, Z int32
	W             int8
}
