package model

//go:generate go run github.com/dmarkham/enumer -type PermissionLevel -trimprefix Permission -transform upper -json -sql -output permission_level.gen.go

// PermissionLevel orders access levels from weakest to strongest. Holding a
// level implicitly authorizes any operation that requires a lower one.
type PermissionLevel int

const (
	PermissionRead PermissionLevel = iota
	PermissionWrite
	PermissionDelete
)

// Min returns the lower of two levels.
func Min(a, b PermissionLevel) PermissionLevel {
	if a < b {
		return a
	}
	return b
}

// Max returns the higher of two levels.
func Max(a, b PermissionLevel) PermissionLevel {
	if a > b {
		return a
	}
	return b
}

// Satisfies reports whether holding this level authorizes an operation
// requiring the given level.
func (i PermissionLevel) Satisfies(required PermissionLevel) bool {
	return i >= required
}
