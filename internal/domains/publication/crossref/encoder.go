package crossref

import (
	"encoding/xml"
	"fmt"
	"strings"

	"researchequals-backend/internal/domains/publication/model"
)

// SchemaVersion is the deposit schema this encoder produces.
const SchemaVersion = "5.3.1"

// =====================================================
// DEPOSIT DOCUMENT
// =====================================================

// The element order below follows the posted_content content model of
// the deposit schema. Marshalling a fixed struct keeps the output
// deterministic: the same metadata always yields byte-identical XML.

type doiBatch struct {
	XMLName        xml.Name `xml:"doi_batch"`
	Xmlns          string   `xml:"xmlns,attr"`
	Version        string   `xml:"version,attr"`
	XmlnsXSI       string   `xml:"xmlns:xsi,attr"`
	XmlnsJats      string   `xml:"xmlns:jats,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	Head           head     `xml:"head"`
	Body           body     `xml:"body"`
}

type head struct {
	DOIBatchID string    `xml:"doi_batch_id"`
	Timestamp  int64     `xml:"timestamp"`
	Depositor  depositor `xml:"depositor"`
	Registrant string    `xml:"registrant"`
}

type depositor struct {
	Name  string `xml:"depositor_name"`
	Email string `xml:"email_address"`
}

type body struct {
	PostedContent postedContent `xml:"posted_content"`
}

type postedContent struct {
	Type           string        `xml:"type,attr"`
	Language       string        `xml:"language,attr"`
	Contributors   contributors  `xml:"contributors"`
	Titles         titles        `xml:"titles"`
	PostedDate     date          `xml:"posted_date"`
	AcceptanceDate date          `xml:"acceptance_date"`
	Abstract       jatsAbstract  `xml:"jats:abstract"`
	Program        program       `xml:"program"`
	DOIData        doiData       `xml:"doi_data"`
	CitationList   *citationList `xml:"citation_list,omitempty"`
}

type contributors struct {
	PersonNames []personName `xml:"person_name"`
}

type personName struct {
	Sequence  string `xml:"sequence,attr"`
	Role      string `xml:"contributor_role,attr"`
	GivenName string `xml:"given_name"`
	Surname   string `xml:"surname"`
	ORCID     string `xml:"ORCID,omitempty"`
}

type titles struct {
	Title string `xml:"title"`
}

type date struct {
	Month string `xml:"month"`
	Day   string `xml:"day"`
	Year  string `xml:"year"`
}

type jatsAbstract struct {
	P string `xml:"jats:p"`
}

type program struct {
	Xmlns      string     `xml:"xmlns,attr"`
	Name       string     `xml:"name,attr"`
	LicenseRef licenseRef `xml:"license_ref"`
}

type licenseRef struct {
	AppliesTo string `xml:"applies_to,attr"`
	URL       string `xml:",chardata"`
}

type doiData struct {
	DOI      string `xml:"doi"`
	Resource string `xml:"resource"`
}

type citationList struct {
	Citations []citation `xml:"citation"`
}

// A citation carries either a structured identifier (platform-native
// works registered under our prefix) or an unstructured rendering of
// the external work.
type citation struct {
	Key          string `xml:"key,attr"`
	DOI          string `xml:"doi,omitempty"`
	Unstructured string `xml:"unstructured_citation,omitempty"`
}

// =====================================================
// ENCODER
// =====================================================

// Encoder serializes assembled module metadata into a deposit document.
type Encoder struct {
	depositorName string
	depositorMail string
	registrant    string
	platformTag   string
}

func NewEncoder(depositorName, depositorMail, registrant, platformTag string) *Encoder {
	return &Encoder{
		depositorName: depositorName,
		depositorMail: depositorMail,
		registrant:    registrant,
		platformTag:   platformTag,
	}
}

// Encode produces the deposit XML for one module. Required fields are
// re-checked here: upstream validation should have caught them, but the
// encoder does not assume it did.
func (e *Encoder) Encode(md *model.ModuleMetadata) ([]byte, error) {
	if md.Title == "" {
		return nil, model.NewEncodingError("deposit requires a title", nil)
	}
	if md.Description == "" {
		return nil, model.NewEncodingError("deposit requires an abstract", nil)
	}
	if len(md.Contributors) == 0 {
		return nil, model.NewEncodingError("deposit requires at least one author", nil)
	}

	persons := make([]personName, 0, len(md.Contributors))
	for _, c := range md.Contributors {
		persons = append(persons, personName{
			Sequence:  c.Sequence,
			Role:      "author",
			GivenName: c.FirstName,
			Surname:   c.LastName,
			ORCID:     c.ORCID,
		})
	}

	posted := date{
		Month: fmt.Sprintf("%02d", md.AcceptanceDate.UTC().Month()),
		Day:   fmt.Sprintf("%02d", md.AcceptanceDate.UTC().Day()),
		Year:  fmt.Sprintf("%d", md.AcceptanceDate.UTC().Year()),
	}

	var cites *citationList
	if len(md.Citations) > 0 {
		list := make([]citation, 0, len(md.Citations))
		for _, c := range md.Citations {
			list = append(list, e.encodeCitation(c))
		}
		cites = &citationList{Citations: list}
	}

	batch := doiBatch{
		Xmlns:          "http://www.crossref.org/schema/" + SchemaVersion,
		Version:        SchemaVersion,
		XmlnsXSI:       "http://www.w3.org/2001/XMLSchema-instance",
		XmlnsJats:      "http://www.niso.org/standards/z39-96/ns/jats1/",
		SchemaLocation: fmt.Sprintf("http://www.crossref.org/schema/%s http://data.crossref.org/schemas/crossref%s.xsd", SchemaVersion, SchemaVersion),
		Head: head{
			DOIBatchID: md.BatchID,
			Timestamp:  md.Timestamp,
			Depositor: depositor{
				Name:  e.depositorName,
				Email: e.depositorMail,
			},
			Registrant: e.registrant,
		},
		Body: body{
			PostedContent: postedContent{
				Type:           "other",
				Language:       md.Language,
				Contributors:   contributors{PersonNames: persons},
				Titles:         titles{Title: md.Title},
				PostedDate:     posted,
				AcceptanceDate: posted,
				Abstract:       jatsAbstract{P: md.Description},
				Program: program{
					Xmlns:      "http://www.crossref.org/AccessIndicators.xsd",
					Name:       "AccessIndicators",
					LicenseRef: licenseRef{AppliesTo: "vor", URL: md.LicenseURL},
				},
				DOIData: doiData{
					DOI:      md.DOI,
					Resource: md.ResolveURL,
				},
				CitationList: cites,
			},
		},
	}

	out, err := xml.MarshalIndent(batch, "", "  ")
	if err != nil {
		return nil, model.NewEncodingError("failed to marshal deposit document", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func (e *Encoder) encodeCitation(c model.Citation) citation {
	out := citation{Key: c.Key}
	if c.PublishedWhere == e.platformTag && c.DOI != "" {
		out.DOI = c.DOI
		return out
	}
	out.Unstructured = renderUnstructured(c)
	return out
}

// renderUnstructured flattens an external citation into a single line:
// "A. Author & B. Author. (2021). Title. https://doi.org/10.1234/xyz".
func renderUnstructured(c model.Citation) string {
	var b strings.Builder

	names := make([]string, 0, len(c.Authors))
	for _, a := range c.Authors {
		names = append(names, a.Name)
	}
	if len(names) > 0 {
		b.WriteString(strings.Join(names, " & "))
		b.WriteString(". ")
	}
	if c.PublishedAt != nil {
		fmt.Fprintf(&b, "(%d). ", c.PublishedAt.UTC().Year())
	}
	b.WriteString(c.Title)
	b.WriteString(".")
	if c.DOI != "" {
		b.WriteString(" https://doi.org/")
		b.WriteString(c.DOI)
	}
	return b.String()
}
