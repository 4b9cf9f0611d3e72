package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RowsPerPageOptions are the page sizes a table cycles through.
var RowsPerPageOptions = []int{5, 10, 20}

// pagedTable is a table with a row cursor and client-side pagination.
type pagedTable struct {
	headers []string
	rows    [][]string
	cursor  int
	empty   string
	pager   paginator.Model
}

func newPagedTable(empty string, perPage int, headers ...string) pagedTable {
	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.PerPage = validRowsPerPage(perPage)
	pager.SetTotalPages(0)

	return pagedTable{headers: headers, empty: empty, pager: pager}
}

func validRowsPerPage(n int) int {
	for _, opt := range RowsPerPageOptions {
		if n == opt {
			return n
		}
	}
	return RowsPerPageOptions[0]
}

// SetRows replaces the rows, keeping the cursor in range.
func (t *pagedTable) SetRows(rows [][]string) {
	t.rows = rows
	t.pager.TotalPages = 1
	t.pager.SetTotalPages(len(rows))
	if t.cursor >= len(rows) {
		t.cursor = max(len(rows)-1, 0)
	}
	t.syncPage()
}

// CycleRowsPerPage steps through [RowsPerPageOptions] and returns to the first page.
func (t *pagedTable) CycleRowsPerPage() {
	next := RowsPerPageOptions[0]
	for i, opt := range RowsPerPageOptions {
		if opt == t.pager.PerPage && i+1 < len(RowsPerPageOptions) {
			next = RowsPerPageOptions[i+1]
		}
	}
	t.SetRowsPerPage(next)
}

func (t *pagedTable) SetRowsPerPage(n int) {
	t.pager.PerPage = validRowsPerPage(n)
	t.pager.TotalPages = 1
	t.pager.SetTotalPages(len(t.rows))
	t.cursor = 0
	t.pager.Page = 0
}

func (t *pagedTable) RowsPerPage() int { return t.pager.PerPage }
func (t *pagedTable) Page() int        { return t.pager.Page }
func (t *pagedTable) Len() int         { return len(t.rows) }

// Cursor returns the absolute index of the highlighted row.
func (t *pagedTable) Cursor() int { return t.cursor }

func (t *pagedTable) Up() {
	if t.cursor > 0 {
		t.cursor--
		t.syncPage()
	}
}

func (t *pagedTable) Down() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.syncPage()
	}
}

func (t *pagedTable) NextPage() {
	if (t.pager.Page+1)*t.pager.PerPage < len(t.rows) {
		t.pager.Page++
		t.cursor = t.pager.Page * t.pager.PerPage
	}
}

func (t *pagedTable) PrevPage() {
	if t.pager.Page > 0 {
		t.pager.Page--
		t.cursor = t.pager.Page * t.pager.PerPage
	}
}

func (t *pagedTable) syncPage() {
	if t.pager.PerPage > 0 {
		t.pager.Page = t.cursor / t.pager.PerPage
	}
}

// VisibleRows returns the rows of the current page.
func (t *pagedTable) VisibleRows() [][]string {
	start, end := t.pager.GetSliceBounds(len(t.rows))
	return t.rows[start:end]
}

func (t *pagedTable) View(focused bool) string {
	if len(t.rows) == 0 {
		return styles.muted.Render(t.empty)
	}

	start, _ := t.pager.GetSliceBounds(len(t.rows))
	cursorRow := t.cursor - start

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(t.headers...).
		Rows(t.VisibleRows()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.heading.Padding(0, 1)
			case focused && row == cursorRow:
				return styles.selected.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})

	footer := styles.muted.Render(fmt.Sprintf("%s • %d rows per page • %d total", t.pager.View(), t.pager.PerPage, len(t.rows)))
	return lipgloss.JoinVertical(lipgloss.Left, tbl.String(), footer)
}
