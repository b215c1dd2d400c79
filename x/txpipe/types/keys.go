package types

const (
	ModuleName = "txpipe"

	DefaultGasLimit uint64 = 200_000
)
