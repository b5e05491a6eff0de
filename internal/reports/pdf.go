// Package reports renders the animal behavior and health report.
package reports

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"rescuetrack/internal/models"

	"github.com/jung-kurt/gofpdf"
)

const (
	Title = "Animal Behavior and Health Report"

	marginX      = 14.0
	contentWidth = 182.0
	pageBottom   = 277.0
	// Vertical positions after which a new page is started.
	animalBreakY = 260.0
	examBreakY   = 250.0

	tableTop     = 20.0
	headerHeight = 8.0
	lineHeight   = 5.0
	cellPadding  = 2.0

	dateFormat     = "Jan 02, 2006"
	dateTimeFormat = "Jan 02, 2006 3:04 PM"
)

var (
	behaviorColumns = []column{{"Date & Time", 35}, {"Behavior", 30}, {"Description", 52}, {"Location", 40}, {"Recorded By", 25}}
	examColumns     = []column{{"Date & Time", 35}, {"Weight", 20}, {"Diagnosis", 50}, {"Notes", 52}, {"Recorded By", 25}}
)

type column struct {
	title string
	width float64
}

type renderer struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	data models.ReportData
}

// Render builds the PDF for data and returns its bytes.
func Render(data models.ReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.SetSubject(fmt.Sprintf("Report from %s to %s", data.Start.Format(dateFormat), data.End.Format(dateFormat)), true)
	pdf.SetCreator("rescuetrack", true)
	pdf.SetMargins(marginX, 10, marginX)
	pdf.SetAutoPageBreak(false, 10)
	pdf.AliasNbPages("{nb}")

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), data: data}
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(marginX, 282)
		pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	r.header()
	for i, animal := range data.Animals {
		r.animal(animal, i == len(data.Animals)-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *renderer) header() {
	r.pdf.SetFont("Arial", "B", 20)
	r.pdf.SetXY(marginX, 8)
	r.pdf.CellFormat(contentWidth, 10, Title, "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "", 12)
	period := fmt.Sprintf("Report Period: %s to %s", r.data.Start.Format(dateFormat), r.data.End.Format(dateFormat))
	r.pdf.CellFormat(contentWidth, 7, r.tr(period), "", 1, "C", false, 0, "")
	if r.data.OrganizationName != "" {
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.CellFormat(contentWidth, 5, r.tr(r.data.OrganizationName), "", 1, "C", false, 0, "")
	}
	r.pdf.SetY(30)
}

func (r *renderer) ensure(threshold float64) {
	if r.pdf.GetY() > threshold {
		r.pdf.AddPage()
		r.pdf.SetY(tableTop)
	}
}

func (r *renderer) text(size float64, style string, height float64, s string) {
	r.pdf.SetFont("Arial", style, size)
	r.pdf.SetX(marginX)
	r.pdf.CellFormat(contentWidth, height, r.tr(s), "", 1, "L", false, 0, "")
}

func (r *renderer) animal(report models.AnimalReport, last bool) {
	r.ensure(animalBreakY)
	a := report.Animal

	r.text(16, "B", 8, "Animal: "+a.Name)
	speciesName := "Unknown Species"
	if report.Species != nil {
		speciesName = report.Species.Name
	}
	r.text(11, "", 6, "Species: "+speciesName)
	r.text(11, "", 6, "ID Number: "+orDefault(a.IdentificationNumber, "Not specified"))
	r.text(11, "", 6, "Status: "+a.Status)
	admission := "Not specified"
	if a.DateOfBirth != nil {
		admission = a.DateOfBirth.Format(dateFormat)
	}
	r.text(11, "", 6, "Admission Date: "+admission)
	r.pdf.Ln(4)

	if len(report.Behaviors) > 0 {
		r.text(14, "B", 7, "Behavior Records")
		rows := make([][]string, 0, len(report.Behaviors))
		for _, b := range report.Behaviors {
			rows = append(rows, []string{
				b.CreatedAt.Format(dateTimeFormat),
				b.Behavior,
				orDefault(b.Description, ""),
				orDefault(b.Location, ""),
				r.staffName(b.StaffID.String()),
			})
		}
		r.table(behaviorColumns, rows)
		r.pdf.Ln(10)
	} else {
		r.text(12, "", 10, "No behavior records found for the selected period.")
	}

	r.ensure(examBreakY)

	if len(report.BodyExams) > 0 {
		r.text(14, "B", 7, "Body Examination Records")
		rows := make([][]string, 0, len(report.BodyExams))
		for _, e := range report.BodyExams {
			weight := "-"
			if e.Weight != nil {
				weight = strconv.FormatFloat(*e.Weight, 'f', -1, 64) + " kg"
			}
			rows = append(rows, []string{
				e.CreatedAt.Format(dateTimeFormat),
				weight,
				orDefault(e.Diagnosis, "-"),
				orDefault(e.Notes, "-"),
				r.staffName(e.StaffID.String()),
			})
		}
		r.table(examColumns, rows)
		r.pdf.Ln(10)
	} else {
		r.text(12, "", 10, "No body exam records found for the selected period.")
	}

	if !last {
		y := r.pdf.GetY()
		r.pdf.SetDrawColor(200, 200, 200)
		r.pdf.Line(marginX, y, marginX+contentWidth, y)
		r.pdf.SetY(y + 10)
	}
}

func (r *renderer) staffName(id string) string {
	if name, ok := r.data.StaffNames[id]; ok && name != "" {
		return name
	}
	return "Unknown"
}

func (r *renderer) tableHeader(cols []column) {
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(66, 66, 66)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetX(marginX)
	for _, c := range cols {
		r.pdf.CellFormat(c.width, headerHeight, c.title, "1", 0, "L", true, 0, "")
	}
	r.pdf.Ln(headerHeight)
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.SetFont("Arial", "", 10)
}

func (r *renderer) continueTable(cols []column) {
	r.pdf.AddPage()
	r.pdf.SetY(tableTop)
	r.tableHeader(cols)
}

// linesFitting is how many wrapped lines fit between the cursor and the page bottom.
func (r *renderer) linesFitting() int {
	return int((pageBottom - r.pdf.GetY() - cellPadding) / lineHeight)
}

// table draws rows with wrapped cells, repeating the header on every new page.
// A row taller than a page is split across pages.
func (r *renderer) table(cols []column, rows [][]string) {
	var freshSpace float64 = pageBottom - tableTop - headerHeight - cellPadding
	freshPage := int(freshSpace / lineHeight)
	if r.pdf.GetY()+headerHeight+lineHeight+cellPadding > pageBottom {
		r.pdf.AddPage()
		r.pdf.SetY(tableTop)
	}
	r.tableHeader(cols)

	for _, row := range rows {
		lines := make([][]string, len(cols))
		total := 1
		for i, c := range cols {
			for _, l := range r.pdf.SplitLines([]byte(r.tr(row[i])), c.width-2) {
				lines[i] = append(lines[i], string(l))
			}
			if len(lines[i]) > total {
				total = len(lines[i])
			}
		}

		for start := 0; start < total; {
			remaining := total - start
			fit := r.linesFitting()
			if remaining > fit && (fit < 1 || (start == 0 && remaining <= freshPage)) {
				r.continueTable(cols)
				continue
			}
			n := min(remaining, fit)
			r.rowSegment(cols, lines, start, n)
			start += n
		}
	}
}

// rowSegment draws lines [start, start+n) of every cell as one bordered band.
func (r *renderer) rowSegment(cols []column, lines [][]string, start, n int) {
	height := float64(n)*lineHeight + cellPadding
	x, y := marginX, r.pdf.GetY()
	for i, c := range cols {
		r.pdf.Rect(x, y, c.width, height, "D")
		for j := start; j < start+n && j < len(lines[i]); j++ {
			r.pdf.SetXY(x+1, y+1+float64(j-start)*lineHeight)
			r.pdf.CellFormat(c.width-2, lineHeight, lines[i][j], "", 0, "L", false, 0, "")
		}
		x += c.width
	}
	r.pdf.SetXY(marginX, y+height)
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// Filename is the download name of a report generated at t.
func Filename(t time.Time) string {
	return "animal-report-" + t.Format("2006-01-02") + ".pdf"
}
