package physics

// Logger is the subset of the host logger the engine writes to.
// Degenerate geometry is reported through Debugf, ill-formed input through Warnf.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Warnf(format string, args ...any)  {}
