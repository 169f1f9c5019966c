package contacts

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
	"github.com/DanishNadar/ttp-tracker/internal/utils"
)

const (
	columnEmail     = "Email"
	columnWebsite   = "Website"
	columnFirstName = "First Name"
	columnLastName  = "Last Name"
	columnTitle     = "Title"
	columnCompany   = "Company Name"
)

// DefaultFallbackDepth is how many leftmost labels Resolve may strip.
const DefaultFallbackDepth = 2

type Contact struct {
	Email     string
	FirstName string
	LastName  string
	Title     string
	Company   string
	Website   string
}

// Index maps a domain to the first contact seen for it
type Index struct {
	byDomain      map[string]Contact
	fallbackDepth int
}

func NewIndex(contacts []Contact, fallbackDepth int) *Index {
	if fallbackDepth < 0 {
		fallbackDepth = 0
	}
	idx := &Index{byDomain: make(map[string]Contact), fallbackDepth: fallbackDepth}
	for _, c := range contacts {
		idx.add(c)
	}
	return idx
}

func (i *Index) add(c Contact) {
	domain, ok := utils.DomainFromEmail(c.Email)
	if !ok {
		domain, ok = utils.NormalizeDomain(c.Website)
	}
	if !ok {
		return
	}
	if _, exists := i.byDomain[domain]; exists {
		return
	}
	i.byDomain[domain] = c
}

func (i *Index) Len() int {
	return len(i.byDomain)
}

// Resolve looks the domain up directly, then through its parent domains.
func (i *Index) Resolve(domain string) (Contact, bool) {
	for _, candidate := range utils.CandidateDomains(domain, i.fallbackDepth) {
		if c, ok := i.byDomain[candidate]; ok {
			return c, true
		}
	}
	return Contact{}, false
}

// LoadIndex reads a contact export CSV. Unknown columns are ignored.
func LoadIndex(ctx context.Context, path string, fallbackDepth int, log logger.Logger) (*Index, error) {
	span, _ := tracing.StartTracerSpan(ctx, "contacts.LoadIndex")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.SetTag("path", path)

	f, err := os.Open(path)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "open contacts file %s", path)
	}
	defer f.Close()

	contacts, err := ReadContacts(f)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	idx := NewIndex(contacts, fallbackDepth)
	span.LogKV("rows", len(contacts), "domains", idx.Len())
	log.Infof("Loaded %d contacts covering %d domains", len(contacts), idx.Len())
	return idx, nil
}

func ReadContacts(r io.Reader) ([]Contact, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read contacts header")
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, exists := columns[name]; !exists {
			columns[name] = idx
		}
	}

	var contacts []Contact
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read contacts row")
		}
		get := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		contacts = append(contacts, Contact{
			Email:     get(columnEmail),
			FirstName: get(columnFirstName),
			LastName:  get(columnLastName),
			Title:     get(columnTitle),
			Company:   get(columnCompany),
			Website:   get(columnWebsite),
		})
	}
	return contacts, nil
}
