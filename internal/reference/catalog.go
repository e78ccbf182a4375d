package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DescriptionNotFound is emitted when a code has no catalog entry.
// Kept verbatim from the production reference data convention.
const DescriptionNotFound = "Description not found"

// Catalog maps machine fault codes to their human-readable descriptions.
// The three tables mirror the manufacturer's reference sheets: EID events,
// CID components and FMI failure modes.
type Catalog struct {
	eid map[int]string
	cid map[int]string
	fmi map[int]string
}

// NewCatalog returns an empty catalog. Lookups on an empty catalog yield
// DescriptionNotFound, so the pipeline degrades rather than fails when
// reference data is not configured.
func NewCatalog() *Catalog {
	return &Catalog{
		eid: map[int]string{},
		cid: map[int]string{},
		fmi: map[int]string{},
	}
}

// LoadCatalog reads the three description tables from CSV files inside
// dir: EID_DESCRIPTION.csv, CID_DESCRIPTION.csv, FMI_DESCRIPTION.csv.
// Each file has a header row and rows of "code,description".
// A missing file leaves its table empty.
func LoadCatalog(dir string) (*Catalog, error) {
	c := NewCatalog()

	tables := []struct {
		file string
		dst  map[int]string
	}{
		{"EID_DESCRIPTION.csv", c.eid},
		{"CID_DESCRIPTION.csv", c.cid},
		{"FMI_DESCRIPTION.csv", c.fmi},
	}

	for _, t := range tables {
		path := filepath.Join(dir, t.file)
		if err := loadTable(path, t.dst); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("load %s: %w", t.file, err)
		}
	}

	return c, nil
}

func loadTable(path string, dst map[int]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if header {
			header = false
			continue
		}
		if len(record) < 2 {
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			continue
		}
		dst[code] = strings.TrimSpace(record[1])
	}
}

// DescribeEID returns the description for an EID code.
func (c *Catalog) DescribeEID(eid int) string {
	if d, ok := c.eid[eid]; ok {
		return d
	}
	return DescriptionNotFound
}

// DescribeCIDFMI returns the combined component + failure-mode description
// for a CID-FMI pairing.
func (c *Catalog) DescribeCIDFMI(cid, fmi int) string {
	cidDesc, cidOK := c.cid[cid]
	fmiDesc, fmiOK := c.fmi[fmi]
	if !cidOK || !fmiOK {
		return DescriptionNotFound
	}
	return cidDesc + " - " + fmiDesc
}

// AddEID inserts an EID description. Used by tests and seed tooling.
func (c *Catalog) AddEID(eid int, description string) {
	c.eid[eid] = description
}

// AddCID inserts a CID description.
func (c *Catalog) AddCID(cid int, description string) {
	c.cid[cid] = description
}

// AddFMI inserts an FMI description.
func (c *Catalog) AddFMI(fmi int, description string) {
	c.fmi[fmi] = description
}

// Describe resolves the description for a raw code string of the given
// type ("EID" or "CID-FMI"), following the display formats the extraction
// stage produces: "E361" / "361" for EID, "168-3" for CID-FMI.
func (c *Catalog) Describe(code, codeType string) string {
	switch codeType {
	case "EID":
		numeric := strings.TrimPrefix(strings.TrimPrefix(code, "E"), "e")
		n, err := strconv.Atoi(numeric)
		if err != nil {
			return DescriptionNotFound
		}
		return c.DescribeEID(n)
	case "CID-FMI":
		cidPart, fmiPart, ok := strings.Cut(code, "-")
		if !ok {
			return DescriptionNotFound
		}
		cid, err1 := strconv.Atoi(strings.TrimSpace(cidPart))
		fmi, err2 := strconv.Atoi(strings.TrimSpace(fmiPart))
		if err1 != nil || err2 != nil {
			return DescriptionNotFound
		}
		return c.DescribeCIDFMI(cid, fmi)
	}
	return DescriptionNotFound
}
