package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/willkamu/crm-shekinah-sub001/internal/model"
)

// MembersHeader is the CSV header for members.csv.
const MembersHeader = "dni,name,branch_id,fidelity"

// BranchesHeader is the CSV header for branches.csv.
const BranchesHeader = "id,name,leader"

// ReadMembers reads all members from a members.csv reader.
func ReadMembers(r io.Reader) ([]model.Member, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading members CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var members []model.Member
	for _, rec := range records[1:] {
		fidelity := model.Fidelity(rec[3])
		if fidelity == "" {
			fidelity = model.FidelityUnknown
		}
		members = append(members, model.Member{
			DNI:      rec[0],
			Name:     rec[1],
			BranchID: rec[2],
			Fidelity: fidelity,
		})
	}
	return members, nil
}

// WriteMembers writes members to a members.csv writer, including the header.
func WriteMembers(w io.Writer, members []model.Member) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(MembersHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, m := range members {
		row := []string{m.DNI, m.Name, m.BranchID, string(m.Fidelity)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadBranches reads all branches from a branches.csv reader.
func ReadBranches(r io.Reader) ([]model.Branch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading branches CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var branches []model.Branch
	for _, rec := range records[1:] {
		branches = append(branches, model.Branch{ID: rec[0], Name: rec[1], Leader: rec[2]})
	}
	return branches, nil
}

// WriteBranches writes branches to a branches.csv writer, including the header.
func WriteBranches(w io.Writer, branches []model.Branch) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(BranchesHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, b := range branches {
		if err := cw.Write([]string{b.ID, b.Name, b.Leader}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
