// package formatter renders channel data for CLI output as tables, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/mlcc/internal/models"
	"github.com/desertthunder/mlcc/internal/shared"
)

// Format selects how [Write] renders a [Table].
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat parses a --format flag value; "" and "text" mean [FormatTable].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table", "text":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: format must be table, csv, markdown or json, got %q", shared.ErrInvalidFlag, s)
}

// Table is a header row plus data rows. Source is marshalled as-is for [FormatJSON].
type Table struct {
	Headers []string
	Rows    [][]string
	Source  any
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Write renders t to w in format.
func Write(w io.Writer, format Format, t Table) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatCSV:
		data, err = ToCSV(t)
	case FormatMarkdown:
		data = ToMarkdown(t)
	case FormatJSON:
		data, err = shared.MarshalJSON(t.Source, true)
		data = append(data, '\n')
	default:
		data = []byte(ToText(t) + "\n")
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// ToText renders t as a bordered terminal table.
func ToText(t Table) string {
	if len(t.Rows) == 0 {
		return "No results."
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// ToCSV renders t as CSV with a header row.
func ToCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders t as a GitHub-flavoured pipe table.
func ToMarkdown(t Table) []byte {
	var buf bytes.Buffer

	escape := func(cells []string) string {
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		return "| " + strings.Join(out, " | ") + " |\n"
	}

	buf.WriteString(escape(t.Headers))
	sep := make([]string, len(t.Headers))
	for i := range sep {
		sep[i] = "---"
	}
	buf.WriteString("|" + strings.Join(sep, "|") + "|\n")

	for _, row := range t.Rows {
		buf.WriteString(escape(row))
	}

	return buf.Bytes()
}

// Channels lists channels with their state and active input.
func Channels(channels []models.Channel) Table {
	t := Table{Headers: []string{"ID", "Name", "State", "Active Input", "Inputs"}, Source: channels}
	for _, ch := range channels {
		active := ""
		if in, ok := ch.ActiveInput(); ok {
			active = in.Name
		}
		t.Rows = append(t.Rows, []string{ch.ID, ch.Name, string(ch.State), active, strconv.Itoa(len(ch.InputAttachments))})
	}
	return t
}

// Inputs lists the input attachments of ch; the active input is marked.
func Inputs(ch models.Channel) Table {
	t := Table{Headers: []string{"ID", "Name", "Active"}, Source: ch.InputAttachments}
	for _, in := range ch.InputAttachments {
		active := ""
		if in.Active {
			active = "✓"
		}
		t.Rows = append(t.Rows, []string{in.ID, in.Name, active})
	}
	return t
}

// ConfigItems lists the outputs or graphics of detail.
func ConfigItems(detail *models.ChannelDetail, dataType models.ConfigDataType) Table {
	t := Table{Headers: []string{"ID", "Name", "URL"}}
	if detail == nil {
		return t
	}

	switch dataType {
	case models.DataTypeGraphics:
		t.Source = detail.Graphics
		for _, g := range detail.Graphics {
			t.Rows = append(t.Rows, []string{g.ID, g.Name, g.URL})
		}
	default:
		t.Source = detail.Outputs
		for _, o := range detail.Outputs {
			t.Rows = append(t.Rows, []string{o.ID, o.Name, o.URL})
		}
	}
	return t
}

// Discovered lists discovered outputs; ones whose URL is already configured are marked.
func Discovered(outputs []models.DiscoveredOutput, detail *models.ChannelDetail) Table {
	t := Table{Headers: []string{"Type", "Name", "URL", "Configured"}, Source: outputs}
	for _, o := range outputs {
		configured := ""
		if detail != nil && detail.HasURL(models.DataTypeOutputs, o.URL) {
			configured = "✓"
		}
		t.Rows = append(t.Rows, []string{o.Type, o.Name, o.URL, configured})
	}
	return t
}

// Alerts lists the alerts of a channel detail, newest first as returned by the service.
func Alerts(alerts []models.Alert) Table {
	t := Table{Headers: []string{"ID", "Time", "State", "Message"}, Source: alerts}
	for _, a := range alerts {
		t.Rows = append(t.Rows, []string{a.ID, FormatTime(a.Time()), a.State, a.Message})
	}
	return t
}

// AlertRecordJSON is the JSON shape of a stored alert.
type AlertRecordJSON struct {
	ChannelID string     `json:"channel_id"`
	ID        string     `json:"id"`
	AlertedAt time.Time  `json:"alerted_at"`
	State     string     `json:"state"`
	Message   string     `json:"message"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// AlertRecords lists alerts from the local history.
func AlertRecords(records []*models.AlertRecord) Table {
	t := Table{Headers: []string{"Channel", "ID", "Time", "State", "Message", "Expires"}}
	source := make([]AlertRecordJSON, 0, len(records))
	for _, r := range records {
		a := r.Alert()
		expires := ""
		if r.ExpiresAt() != nil {
			expires = FormatTime(*r.ExpiresAt())
		}
		t.Rows = append(t.Rows, []string{r.ChannelID(), a.ID, FormatTime(a.Time()), a.State, a.Message, expires})
		source = append(source, AlertRecordJSON{
			ChannelID: r.ChannelID(),
			ID:        a.ID,
			AlertedAt: a.Time(),
			State:     a.State,
			Message:   a.Message,
			ExpiresAt: r.ExpiresAt(),
		})
	}
	t.Source = source
	return t
}

// ActionJSON is the JSON shape of a logged action.
type ActionJSON struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	ChannelID string    `json:"channel_id"`
	Kind      string    `json:"kind"`
	Target    string    `json:"target,omitempty"`
	Succeeded bool      `json:"succeeded"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Actions lists the operator action log.
func Actions(actions []*models.Action) Table {
	t := Table{Headers: []string{"#", "Time", "Channel", "Action", "Target", "Result"}}
	source := make([]ActionJSON, 0, len(actions))
	for _, a := range actions {
		result := "ok"
		if !a.Succeeded() {
			result = "failed: " + a.ErrorMessage()
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(a.Sequence()),
			FormatTime(a.CreatedAt()),
			a.ChannelID(),
			string(a.Kind()),
			a.Target(),
			result,
		})
		source = append(source, ActionJSON{
			ID:        a.ID(),
			Sequence:  a.Sequence(),
			ChannelID: a.ChannelID(),
			Kind:      string(a.Kind()),
			Target:    a.Target(),
			Succeeded: a.Succeeded(),
			Error:     a.ErrorMessage(),
			CreatedAt: a.CreatedAt(),
		})
	}
	t.Source = source
	return t
}

// ChannelText renders one channel with its detail as plain text.
func ChannelText(ch models.Channel) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Channel: %s (%s)\n", ch.Name, ch.ID)
	fmt.Fprintf(&buf, "State: %s\n", ch.State)
	if in, ok := ch.ActiveInput(); ok {
		fmt.Fprintf(&buf, "Active input: %s\n", in.Name)
	}
	fmt.Fprintf(&buf, "Graphics enabled: %t\n", ch.GraphicsEnabled)

	section := func(title string, items [][2]string) {
		fmt.Fprintf(&buf, "\n%s: %d\n", title, len(items))
		for i, item := range items {
			fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, item[0], item[1])
		}
	}

	inputs := make([][2]string, 0, len(ch.InputAttachments))
	for _, in := range ch.InputAttachments {
		status := "standby"
		if in.Active {
			status = "active"
		}
		inputs = append(inputs, [2]string{in.Name, status})
	}
	section("Inputs", inputs)

	outputs := make([][2]string, 0, len(ch.Outputs))
	for _, o := range ch.Outputs {
		outputs = append(outputs, [2]string{o.Name, o.URL})
	}
	section("Outputs", outputs)

	graphics := make([][2]string, 0, len(ch.Graphics))
	for _, g := range ch.Graphics {
		graphics = append(graphics, [2]string{g.Name, g.URL})
	}
	section("Graphics", graphics)

	alerts := make([][2]string, 0, len(ch.Alerts))
	for _, a := range ch.Alerts {
		alerts = append(alerts, [2]string{FormatTime(a.Time()), fmt.Sprintf("[%s] %s", a.State, a.Message)})
	}
	section("Alerts", alerts)

	return buf.String()
}

// FormatTime renders t as ISO-8601 in UTC.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
