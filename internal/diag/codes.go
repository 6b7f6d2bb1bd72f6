package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Препроцессор
	PreInfo             Code = 1000
	PreUnknownConstruct Code = 1001
	PreUnterminatedPipe Code = 1002
	PreBadBindTarget    Code = 1003

	// Экспансия (коды, под которыми переносим чужие диагностики)
	ExpInfo     Code = 2000
	ExpReported Code = 2001
	ExpFailed   Code = 2002

	// Пайплайн / хост
	PipeInfo         Code = 3000
	PipeFileNotFound Code = 3001
	PipeMapDegraded  Code = 3002
)

// String returns the stable textual form used in output and golden files.
func (c Code) String() string {
	switch {
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("PRE%04d", uint16(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("EXP%04d", uint16(c))
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("PIP%04d", uint16(c))
	}
	return fmt.Sprintf("UNK%04d", uint16(c))
}
