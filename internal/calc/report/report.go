package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	biomass "PalmBiomass/internal/calc/biomass"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type Input struct {
	Project      string             `json:"project"`
	Author       string             `json:"author"`
	Title        string             `json:"title"`
	Notes        string             `json:"notes"`
	FFBMT        float64            `json:"ffb_mt"`
	AreaHA       float64            `json:"area_ha"`
	Preset       string             `json:"preset,omitempty"`
	Overrides    map[string]float64 `json:"overrides,omitempty"`
	FrondMTPerHA float64            `json:"frond_mt_per_ha,omitempty"`
	TrunkMTPerHA float64            `json:"trunk_mt_per_ha,omitempty"`
}

// Document is a computed report. Mass and Area are nil when their input is zero.
type Document struct {
	Title   string
	Project string
	Author  string
	Notes   string
	Date    time.Time
	Mass    *biomass.MassResult
	Area    *biomass.AreaResult
}

var descriptions = map[string]string{
	"EFB":  "Residual bunches after oil extraction.",
	"PKS":  "Shell fragments from palm kernels.",
	"MF":   "Fibrous residue from the palm fruit.",
	"DC":   "Solid residue from decanting crude palm oil.",
	"POME": "Liquid waste by-product from palm oil mills.",
	"SPO":  "Low-grade oil recovered from mill sludge.",
}

var areaDescriptions = []struct{ name, text string }{
	{"Oil Palm Frond (OPF)", "The leaves of the palm, often used as animal feed or compost."},
	{"Oil Palm Trunk (OPT)", "The trunk of the palm, commonly used as a source of biomass for energy or as a raw material in wood-based industries."},
}

var References = []string{
	"Cheah, W. Y., Siti-Dina, R. P., Leng, S. T. K., Er, A. C., & Show, P. L. (2023). Circular bioeconomy in palm oil industry: Current practices and future perspectives. Environmental Technology & Innovation, 30, 103050. https://doi.org/10.1016/j.eti.2023.103050",
	"Abioye, K. J., Harun, N. Y., Umar, H. A., & Kolawole, A. H. (2023). Study of Physicochemical Properties of Palm Oil Decanter Cake for Potential Syngas Generation. Chemical Engineering Transactions, 99, 709-714. https://doi.org/10.3303/CET2399119",
}

// Describe returns the glossary text for a component key, or "".
func Describe(key string) string { return descriptions[key] }

func Build(c *biomass.Catalog, session biomass.Settings, in Input, now time.Time) (Document, error) {
	doc := Document{
		Title:   in.Title,
		Project: in.Project,
		Author:  in.Author,
		Notes:   in.Notes,
		Date:    now,
	}
	if doc.Title == "" {
		doc.Title = "Palm Oil Biomass Report"
	}

	mass, err := biomass.CalculateMass(c, session, biomass.MassInput{
		FFBMT:     in.FFBMT,
		Preset:    in.Preset,
		Overrides: in.Overrides,
	})
	if err != nil {
		return Document{}, err
	}
	if !mass.IsZero() {
		doc.Mass = &mass
	}

	area, err := biomass.CalculateArea(c, session, biomass.AreaInput{
		AreaHA:       in.AreaHA,
		FrondMTPerHA: in.FrondMTPerHA,
		TrunkMTPerHA: in.TrunkMTPerHA,
	})
	if err != nil {
		return Document{}, err
	}
	if !area.IsZero() {
		doc.Area = &area
	}
	return doc, nil
}

// FormatMT renders a quantity the way every report shows it.
func FormatMT(v float64) string { return fmt.Sprintf("%.2f MT", v) }

func Markdown(doc Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if doc.Project != "" {
		fmt.Fprintf(&b, "- Project: %s\n", doc.Project)
	}
	if doc.Author != "" {
		fmt.Fprintf(&b, "- Author: %s\n", doc.Author)
	}
	fmt.Fprintf(&b, "- Date: %s\n\n", doc.Date.Format("2006-01-02"))

	if doc.Mass == nil && doc.Area == nil {
		b.WriteString("No FFB mass or plantation area given.\n\n")
	}

	if m := doc.Mass; m != nil {
		fmt.Fprintf(&b, "## Biomass generated for %s of FFB\n\n", trimFloat(m.FFBMT)+" MT")
		fmt.Fprintf(&b, "Preset: %s\n\n", m.Preset)
		b.WriteString("| Component | Ratio | Quantity |\n|---|---:|---:|\n")
		for _, q := range m.Items {
			fmt.Fprintf(&b, "| %s | %.1f%% | %s |\n", q.Name, q.Ratio*100, FormatMT(q.MT))
		}
		fmt.Fprintf(&b, "| **Total** | %.1f%% | %s |\n\n", m.SumPercentage, FormatMT(m.TotalMT))
		if m.Warning != nil {
			fmt.Fprintf(&b, "> Note: %s.\n\n", m.Warning.Message)
		}
	}

	if a := doc.Area; a != nil {
		fmt.Fprintf(&b, "## Biomass produced from plantation area of %s ha\n\n", trimFloat(a.AreaHA))
		fmt.Fprintf(&b, "- **Oil Palm Frond (OPF):** %s (%.2f MT/ha)\n", FormatMT(a.FrondMT), a.FrondMTPerHA)
		fmt.Fprintf(&b, "- **Oil Palm Trunk (OPT):** %s (%.2f MT/ha)\n\n", FormatMT(a.TrunkMT), a.TrunkMTPerHA)
	}

	if doc.Notes != "" {
		fmt.Fprintf(&b, "## Notes\n\n%s\n\n", doc.Notes)
	}

	b.WriteString("## Biomass components\n\n")
	for _, line := range glossary(doc) {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	b.WriteString("\n## References\n\n")
	for _, ref := range References {
		fmt.Fprintf(&b, "- %s\n", ref)
	}
	return b.String()
}

// HTML renders the Markdown report.
func HTML(doc Document) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(doc)), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

func glossary(doc Document) []string {
	var lines []string
	if doc.Mass != nil {
		for _, q := range doc.Mass.Items {
			if text := Describe(q.Key); text != "" {
				lines = append(lines, fmt.Sprintf("**%s:** %s", q.Name, text))
			}
		}
	}
	if doc.Area != nil {
		for _, d := range areaDescriptions {
			lines = append(lines, fmt.Sprintf("**%s:** %s", d.name, d.text))
		}
	}
	return lines
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
