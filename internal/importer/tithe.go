package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// MemberChecker tests whether a dni exists in the member directory.
type MemberChecker interface {
	Exists(dni string) bool
}

// FidelityUpdate is one member's new tithe-fidelity state produced by a
// bulk import. Applying updates is the caller's concern; the treasury core
// never mutates the directory itself.
type FidelityUpdate struct {
	DNI      string
	Fidelity model.Fidelity
}

// Result summarizes a bulk import run. Bad rows are counted, never fatal.
type Result struct {
	Updates []FidelityUpdate
	Errors  int
	Rows    int
}

// ParseFidelityToken maps a raw estado_diezmo token to its canonical state.
func ParseFidelityToken(token string) (model.Fidelity, bool) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "SI":
		return model.FidelityFaithful, true
	case "NO":
		return model.FidelityNotFaithful, true
	case "INTERMITENTE":
		return model.FidelityIntermittent, true
	case "SIN_INFO":
		return model.FidelityUnknown, true
	}
	return "", false
}

// ImportTithes parses a delimited tithe-status listing. The header must carry
// `dni` and `estado_diezmo` columns (case-insensitive). A row whose dni
// matches no known member, or whose status token is unrecognized, increments
// the error counter and produces no update; the remaining rows still run.
func ImportTithes(r io.Reader, members MemberChecker) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows are validated individually

	records, err := cr.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("reading tithe CSV: %w", err)
	}
	if len(records) == 0 {
		return Result{}, fmt.Errorf("tithe CSV is empty")
	}

	dniCol, statusCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "dni":
			dniCol = i
		case "estado_diezmo":
			statusCol = i
		}
	}
	if dniCol < 0 || statusCol < 0 {
		return Result{}, fmt.Errorf("tithe CSV needs dni and estado_diezmo columns")
	}

	var result Result
	for _, rec := range records[1:] {
		result.Rows++
		if len(rec) <= dniCol || len(rec) <= statusCol {
			result.Errors++
			continue
		}

		dni := strings.TrimSpace(rec[dniCol])
		fidelity, ok := ParseFidelityToken(rec[statusCol])
		if dni == "" || !ok || !members.Exists(dni) {
			result.Errors++
			continue
		}

		result.Updates = append(result.Updates, FidelityUpdate{DNI: dni, Fidelity: fidelity})
	}
	return result, nil
}
