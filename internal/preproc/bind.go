package preproc

import "morph/internal/diag"

// rewriteBind rewrites `recv::method` into `method.bind(recv)`. A trailing
// call keeps working unchanged: `obj::m(x)` becomes `m.bind(obj)(x)`.
func rewriteBind(rw *rewrite) {
	op := []byte("::")
	cursor := 0
	search := 0
	for {
		at := rw.find(op, search)
		if at < 0 {
			break
		}
		lhsLo, lhsHi, lok := scanOperandLeft(rw.src, at)
		rhsLo, rhsHi, rok := scanRefRight(rw.src, at+2)
		if !lok || !rok {
			rw.warn(diag.PreBadBindTarget, at, at+2,
				"bind operator needs a receiver and a method reference on this line")
			search = at + 2
			continue
		}
		if lhsLo < cursor {
			rw.warn(diag.PreUnknownConstruct, at, at+2,
				"bind operator overlaps an earlier rewrite; left unchanged")
			search = at + 2
			continue
		}

		rw.copy(cursor, lhsLo)
		rw.copy(rhsLo, rhsHi)
		rw.insert(".bind(")
		rw.copy(lhsLo, lhsHi)
		rw.insert(")")
		cursor = rhsHi
		search = rhsHi
	}
	rw.copy(cursor, len(rw.src))
}
