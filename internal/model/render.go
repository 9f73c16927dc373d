package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Domain prefix for model content hashing. Version suffix enables future
// render-format migration without silently invalidating stored hashes.
const hashDomain = "cohort/model/v1"

// RenderLP writes the model in CPLEX LP format, the text artifact the
// solver gateway submits. The render is canonical: the same model always
// produces the same bytes, so it doubles as the hashing serialization.
func (m *Model) RenderLP(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\\ cohort session %s\n", m.Session)
	b.WriteString("Maximize\n obj:")
	if len(m.Objective) == 0 {
		// CPLEX rejects an empty objective expression; a constant works.
		b.WriteString(" 0 " + XVar(0, 0))
	}
	for k, t := range m.Objective {
		b.WriteString(formatTerm(t, k == 0))
	}
	b.WriteString("\nSubject To\n")

	for _, c := range m.Constraints {
		fmt.Fprintf(&b, " %s:", c.Name)
		for k, t := range c.Terms {
			b.WriteString(formatTerm(t, k == 0))
		}
		fmt.Fprintf(&b, " %s %s\n", c.Sense, formatNum(c.RHS))
	}

	b.WriteString("Binaries\n")
	for _, v := range m.Binaries {
		b.WriteString(" " + v + "\n")
	}
	b.WriteString("End\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// LP returns the canonical LP render as a string.
func (m *Model) LP() string {
	var b strings.Builder
	// strings.Builder never errors.
	_ = m.RenderLP(&b)
	return b.String()
}

// Hash returns the domain-separated SHA-256 of the canonical render.
// Two models hash equal iff their renders are byte-identical, which is
// the determinism contract Build promises.
func (m *Model) Hash() string {
	h := sha256.New()
	h.Write([]byte(hashDomain))
	h.Write([]byte{0x00}) // domain/data boundary
	h.Write([]byte(m.LP()))
	return hex.EncodeToString(h.Sum(nil))
}

// formatTerm renders one signed term. The first term in an expression
// carries an explicit sign only when negative.
func formatTerm(t Term, first bool) string {
	coef := t.Coef
	sign := " +"
	if coef < 0 {
		sign = " -"
		coef = -coef
	}
	if first && sign == " +" {
		sign = ""
	}
	if coef == 1 {
		return fmt.Sprintf("%s %s", sign, t.Var)
	}
	return fmt.Sprintf("%s %s %s", sign, formatNum(coef), t.Var)
}

// formatNum renders a coefficient without scientific notation and
// without trailing float noise: integers as integers, fractions with the
// shortest exact decimal strconv offers.
func formatNum(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
