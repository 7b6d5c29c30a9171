package physics

import "fmt"

type recordingLogger struct {
	debug []string
	warn  []string
}

func (l *recordingLogger) Debugf(format string, args ...any) {
	l.debug = append(l.debug, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warn = append(l.warn, fmt.Sprintf(format, args...))
}

func circleAt(x, y, radius float64) Body {
	b := DefaultBody()
	b.Pos[0], b.Pos[1] = x, y
	b.Shape = CircleShape(radius)
	return b
}
