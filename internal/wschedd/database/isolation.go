package database

import "database/sql"

// DeviceLock is used for schedule writes. The device row lock taken inside
// the transaction already serializes writers, so read committed suffices.
var DeviceLock = &TxOptions{Isolation: sql.LevelReadCommitted}
