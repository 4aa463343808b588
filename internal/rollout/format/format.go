// Package format renders engine outcomes as Russian markdown for the chat UI and CLI.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/engine"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxTableRows caps locality and address tables.
const MaxTableRows = 50

const dateLayout = "02.01.2006"

var statusLabels = map[string]string{
	rollout.StatusConnectionAllowed: "сдан",
	rollout.StatusSMRCompleted:      "СМР завершён, ведутся работы по вводу в эксплуатацию",
	rollout.StatusInProgress:        "в работе (ведутся СМР)",
	rollout.StatusNotStarted:        "строительные работы не начаты",
	rollout.StatusOnCheck:           "на проверке для подключения абонентов",
}

var intentDescriptions = map[rollout.Intent]string{
	rollout.IntentTotalPorts:         "Общее количество сданных портов",
	rollout.IntentPorts:              "Сданные порты по городу и месяцам, с разбивкой по городам и/или месяцам",
	rollout.IntentDeliveredAddresses: "Сданные адреса и текущий статус конкретного адреса",
	rollout.IntentObjectsStatus:      "Статус объектов: сдано, в работе, исключено из проекта",
}

// Markdown renders an outcome. KindNone renders as an empty string so the caller can answer the
// question another way.
func Markdown(out engine.Outcome) string {
	switch out.Kind {
	case engine.KindNone:
		return ""
	case engine.KindUnsupported:
		return unsupported(out.Supported)
	case engine.KindUnavailable:
		return "**Аналитика в настоящее время недоступна.**\n\n" +
			"Не удалось подключиться к базе данных. " +
			"Пожалуйста, проверьте `DATABASE_URL` и убедитесь, что PostgreSQL запущен и доступен."
	case engine.KindQueryFailed:
		return "**Не удалось получить данные аналитики.**\n\n" +
			"Ошибка базы данных: `" + strings.ReplaceAll(out.Err, "`", "'") + "`\n\n" +
			"Пожалуйста, проверьте параметры подключения PostgreSQL."
	case engine.KindMalformedParameters:
		return "**Ошибка:** Не удалось извлечь параметры запроса из вопроса.\n\n" +
			"Пожалуйста, укажите город, месяцы в формате ГГГГ-ММ (например, 2026-02) или нужную группировку."
	case engine.KindNoData:
		return noData(out)
	case engine.KindTotalPorts:
		return "**Всего сданных портов:** " + Number(out.Ports.Total)
	case engine.KindPorts:
		return ports(out.PortsParams, out.Ports)
	case engine.KindAddresses:
		return addresses(out.AddressParams, out.Addresses.Rows)
	case engine.KindAddressStatus:
		return addressStatuses(out.Addresses.NotFoundRows)
	case engine.KindNotFound:
		return notFound(out.AddressParams)
	case engine.KindObjectsStatus:
		return objects(*out.Objects)
	case engine.KindStatusUndetermined:
		return "**Не удалось определить статус объектов.**\n\nПо объектам проекта нет данных."
	default:
		return ""
	}
}

// Number formats n with Russian digit grouping.
func Number(n int64) string {
	return message.NewPrinter(language.Russian).Sprintf("%d", n)
}

// StatusLabel returns the human label for a raw status code.
func StatusLabel(raw string) string {
	if label, ok := statusLabels[raw]; ok {
		return label
	}
	if raw == "" {
		return "статус не указан"
	}
	return "неизвестный статус (" + raw + ")"
}

func unsupported(supported []rollout.Intent) string {
	var b strings.Builder
	b.WriteString("**Поддерживаются только следующие аналитические запросы:**\n\n")
	for _, intent := range supported {
		b.WriteString("- " + intentDescriptions[intent] + "\n")
	}
	b.WriteString("\nПожалуйста, задайте один из этих вопросов или спросите о документации.")
	return b.String()
}

func noData(out engine.Outcome) string {
	switch {
	case out.Intent == rollout.IntentTotalPorts:
		return "**Данных нет.** Сданные порты пока не зарегистрированы."
	case out.Ports != nil && out.Ports.Grouped:
		return "**Данных нет.** Нет строк по заданным фильтрам" + filterSuffix(out.PortsParams) + "."
	default:
		return "**Данных нет.** Сданных портов по заданным фильтрам" + filterSuffix(out.PortsParams) + " не найдено."
	}
}

func ports(p *rollout.PortsParams, r *rollout.PortsResult) string {
	if !r.Grouped {
		return "**Сданные порты" + filterSuffix(p) + ":** " + Number(r.Total)
	}

	var (
		title  string
		header []string
		rows   [][]string
	)
	shown := r.Rows
	switch {
	case p.GroupBy.ByLocality() && p.GroupBy.ByMonth():
		title = "Сданные порты по месяцам и населённым пунктам"
		header = []string{"Месяц", "Населённый пункт", "Порты"}
		for _, row := range shown {
			rows = append(rows, []string{row.Month, row.Locality, Number(row.Ports)})
		}
	case p.GroupBy.ByMonth():
		title = "Сданные порты по месяцам"
		header = []string{"Месяц", "Порты"}
		for _, row := range shown {
			rows = append(rows, []string{row.Month, Number(row.Ports)})
		}
	default:
		title = "Сданные порты в разрезе населённых пунктов"
		header = []string{"Населённый пункт", "Порты"}
		if len(shown) > MaxTableRows {
			shown = shown[:MaxTableRows]
		}
		for _, row := range shown {
			rows = append(rows, []string{row.Locality, Number(row.Ports)})
		}
	}

	var total int64
	for _, row := range shown {
		total += row.Ports
	}

	var b strings.Builder
	b.WriteString("**" + title + filterSuffix(p) + ":**\n\n")
	b.WriteString(table(header, rows))
	if len(shown) < len(r.Rows) {
		b.WriteString(fmt.Sprintf("\n\n_Показаны топ-%d по количеству портов._", len(shown)))
		b.WriteString("\n\n**Итого (по показанным):** " + Number(total))
	} else {
		b.WriteString("\n\n**Итого:** " + Number(total))
	}
	return b.String()
}

func addresses(p *rollout.AddressParams, rows []rollout.DeliveredAddress) string {
	if len(rows) == 1 {
		a := rows[0]
		return "**Адрес сдан.**\n\n" +
			"- **Адрес:** " + a.Address + "\n" +
			"- **Населённый пункт:** " + orNA(a.Locality) + "\n" +
			"- **Порты:** " + Number(a.Ports) + "\n" +
			"- **Дата сдачи:** " + date(a.DeliveredAt)
	}

	shown := rows
	if len(shown) > MaxTableRows {
		shown = shown[:MaxTableRows]
	}
	var total int64
	cells := make([][]string, 0, len(shown))
	for _, a := range shown {
		total += a.Ports
		cells = append(cells, []string{a.Address, orNA(a.Locality), Number(a.Ports), date(a.DeliveredAt)})
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Сданные адреса%s:** %s\n\n", addressFilterSuffix(p), Number(int64(len(rows)))))
	b.WriteString(table([]string{"Адрес", "Населённый пункт", "Порты", "Дата сдачи"}, cells))
	if len(shown) < len(rows) {
		b.WriteString(fmt.Sprintf("\n\n_Показаны последние %d адресов._", len(shown)))
		b.WriteString("\n\n**Итого портов (по показанным):** " + Number(total))
	} else {
		b.WriteString("\n\n**Итого портов:** " + Number(total))
	}
	return b.String()
}

func addressStatuses(rows []rollout.AddressStatus) string {
	var b strings.Builder
	b.WriteString("**Адрес не найден среди сданных.** Текущее состояние:\n")
	for _, a := range rows {
		b.WriteString("\n- **Адрес:** " + a.Address + "\n")
		b.WriteString("  - **Населённый пункт:** " + orNA(a.Locality) + "\n")
		b.WriteString("  - **Порты:** " + Number(a.Ports) + "\n")
		b.WriteString("  - **Статус:** " + StatusLabel(a.RawStatus) + "\n")
		if a.DeliveredAt != nil {
			b.WriteString("  - **Дата сдачи:** " + date(*a.DeliveredAt) + "\n")
		}
		if a.Excluded {
			b.WriteString("  - _Исключён из проекта сети._\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func notFound(p *rollout.AddressParams) string {
	if p != nil && p.HasSearch() {
		return "**Адрес «" + p.AddressSearch + "» не найден.**\n\n" +
			"Проверьте написание улицы и номера дома или уточните населённый пункт."
	}
	return "**Сданные адреса по заданным фильтрам" + addressFilterSuffix(p) + " не найдены.**"
}

func objects(c rollout.ObjectsStatusCounts) string {
	rows := [][]string{
		{"Сдано", Number(c.Delivered)},
		{"В работе / на проверке", Number(c.InProgress)},
		{"Исключено из проекта", Number(c.Excluded)},
	}
	return "**Статус объектов:**\n\n" +
		table([]string{"Статус", "Объекты"}, rows) +
		"\n\n**Итого:** " + Number(c.Total())
}

// table renders a markdown table.
func table(header []string, rows [][]string) string {
	var buf strings.Builder
	t := tablewriter.NewWriter(&buf)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	t.SetCenterSeparator("|")
	for _, row := range rows {
		escaped := make([]string, len(row))
		for i, cell := range row {
			escaped[i] = strings.ReplaceAll(cell, "|", `\|`)
		}
		t.Append(escaped)
	}
	t.Render()
	return strings.TrimRight(buf.String(), "\n")
}

func filterSuffix(p *rollout.PortsParams) string {
	if p == nil {
		return ""
	}
	return suffix(p.Locality, p.Months)
}

func addressFilterSuffix(p *rollout.AddressParams) string {
	if p == nil {
		return ""
	}
	return suffix(p.Locality, p.Months)
}

func suffix(locality string, months []string) string {
	var parts []string
	if locality != "" {
		parts = append(parts, locality)
	}
	if len(months) > 0 {
		parts = append(parts, strings.Join(months, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}

func date(t time.Time) string {
	if t.IsZero() {
		return "н/д"
	}
	return t.Format(dateLayout)
}

func orNA(s string) string {
	if s == "" {
		return "н/д"
	}
	return s
}
