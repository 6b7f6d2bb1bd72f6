package preproc

import (
	"strings"

	"morph/internal/diag"
)

// rewritePipeline rewrites `lhs |> fn` into `fn(lhs)`. Chains fold left to
// right: `x |> f |> g` becomes `g(f(x))`. Both operands must sit on the same
// line as the operator; anything else passes through verbatim with a warning.
func rewritePipeline(rw *rewrite) {
	op := []byte("|>")
	cursor := 0
	search := 0
	for {
		at := rw.find(op, search)
		if at < 0 {
			break
		}
		lhsLo, lhsHi, ok := scanOperandLeft(rw.src, at)
		if !ok {
			rw.warn(diag.PreUnterminatedPipe, at, at+2,
				"pipeline operator has no left operand on this line")
			search = at + 2
			continue
		}
		if lhsLo < cursor {
			rw.warn(diag.PreUnknownConstruct, at, at+2,
				"pipeline operator overlaps an earlier rewrite; left unchanged")
			search = at + 2
			continue
		}

		// parts[0] — левый операнд, дальше — функции цепочки
		parts := [][2]int{{lhsLo, lhsHi}}
		end := at + 2
		bad := false
		for {
			lo, hi, ok := scanOperandRight(rw.src, end)
			if !ok {
				rw.warn(diag.PreUnterminatedPipe, end-2, end,
					"pipeline operator has no right operand on this line")
				bad = true
				break
			}
			parts = append(parts, [2]int{lo, hi})
			end = hi
			j := end
			for j < len(rw.src) && isSpaceByte(rw.src[j]) {
				j++
			}
			if j+1 < len(rw.src) && rw.src[j] == '|' && rw.src[j+1] == '>' && rw.isCode(j, j+2) {
				end = j + 2
				continue
			}
			break
		}
		if bad {
			search = at + 2
			continue
		}

		rw.copy(cursor, lhsLo)
		for i := len(parts) - 1; i >= 1; i-- {
			rw.copy(parts[i][0], parts[i][1])
			rw.insert("(")
		}
		rw.copy(parts[0][0], parts[0][1])
		rw.insert(strings.Repeat(")", len(parts)-1))
		cursor = end
		search = end
	}
	rw.copy(cursor, len(rw.src))
}
