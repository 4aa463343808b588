package format_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/engine"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nbsp = "\u00a0"

func TestRollout_Format_Number(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", format.Number(0))
	assert.Equal(t, "500", format.Number(500))
	assert.Equal(t, "12"+nbsp+"345", format.Number(12345))
	assert.Equal(t, "1"+nbsp+"234"+nbsp+"567", format.Number(1234567))
}

func TestRollout_Format_StatusLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "сдан", format.StatusLabel(rollout.StatusConnectionAllowed))
	assert.Equal(t, "в работе (ведутся СМР)", format.StatusLabel(rollout.StatusInProgress))
	assert.Equal(t, "на проверке для подключения абонентов", format.StatusLabel(rollout.StatusOnCheck))
	assert.Equal(t, "неизвестный статус (ARCHIVED)", format.StatusLabel("ARCHIVED"))
	assert.Equal(t, "статус не указан", format.StatusLabel(""))
}

func TestRollout_Format_FixedMessages(t *testing.T) {
	t.Parallel()

	assert.Empty(t, format.Markdown(engine.Outcome{Kind: engine.KindNone}))
	assert.Contains(t, format.Markdown(engine.Outcome{Kind: engine.KindUnavailable}), "**Аналитика в настоящее время недоступна.**")
	assert.Contains(t, format.Markdown(engine.Outcome{Kind: engine.KindMalformedParameters}), "Не удалось извлечь параметры")
	assert.Contains(t, format.Markdown(engine.Outcome{Kind: engine.KindStatusUndetermined}), "Не удалось определить статус объектов")

	failed := format.Markdown(engine.Outcome{Kind: engine.KindQueryFailed, Err: "timeout `x`"})
	assert.Contains(t, failed, "**Не удалось получить данные аналитики.**")
	assert.Contains(t, failed, "Ошибка базы данных: `timeout 'x'`")

	unsupported := format.Markdown(engine.Outcome{Kind: engine.KindUnsupported, Supported: rollout.SupportedIntents()})
	assert.Equal(t, len(rollout.SupportedIntents()), strings.Count(unsupported, "\n- "))
	assert.Contains(t, unsupported, "Общее количество сданных портов")
}

func TestRollout_Format_Ports(t *testing.T) {
	t.Parallel()

	t.Run("total", func(t *testing.T) {
		t.Parallel()

		md := format.Markdown(engine.Outcome{Kind: engine.KindTotalPorts, Intent: rollout.IntentTotalPorts, Ports: &rollout.PortsResult{Total: 12345}})
		assert.Equal(t, "**Всего сданных портов:** 12"+nbsp+"345", md)
	})

	t.Run("scalar with filters", func(t *testing.T) {
		t.Parallel()

		md := format.Markdown(engine.Outcome{
			Kind:        engine.KindPorts,
			PortsParams: &rollout.PortsParams{Locality: "Астана", Months: []string{"2026-01", "2026-02"}, GroupBy: rollout.GroupByNone},
			Ports:       &rollout.PortsResult{Total: 500},
		})
		assert.Equal(t, "**Сданные порты (Астана; 2026-01, 2026-02):** 500", md)
	})

	t.Run("by month", func(t *testing.T) {
		t.Parallel()

		md := format.Markdown(engine.Outcome{
			Kind:        engine.KindPorts,
			PortsParams: &rollout.PortsParams{GroupBy: rollout.GroupByMonth},
			Ports: &rollout.PortsResult{Grouped: true, Rows: []rollout.PortsRow{
				{Month: "2026-01", Ports: 150},
				{Month: "2026-02", Ports: 350},
			}},
		})
		assert.True(t, strings.HasPrefix(md, "**Сданные порты по месяцам:**\n\n"))
		assertTableRow(t, md, "Месяц", "Порты")
		assertTableRow(t, md, "2026-01", "150")
		assertTableRow(t, md, "2026-02", "350")
		assert.True(t, strings.HasSuffix(md, "**Итого:** 500"))
	})

	t.Run("by locality is capped", func(t *testing.T) {
		t.Parallel()

		var rows []rollout.PortsRow
		for i := range format.MaxTableRows + 5 {
			rows = append(rows, rollout.PortsRow{Locality: fmt.Sprintf("Город %d", i), Ports: 1})
		}
		md := format.Markdown(engine.Outcome{
			Kind:        engine.KindPorts,
			PortsParams: &rollout.PortsParams{GroupBy: rollout.GroupByLocality},
			Ports:       &rollout.PortsResult{Grouped: true, Rows: rows},
		})
		assert.Contains(t, md, "Город 49")
		assert.NotContains(t, md, "Город 50")
		assert.Contains(t, md, "_Показаны топ-50 по количеству портов._")
		assert.Contains(t, md, "**Итого (по показанным):** 50")
	})

	t.Run("by both axes", func(t *testing.T) {
		t.Parallel()

		md := format.Markdown(engine.Outcome{
			Kind:        engine.KindPorts,
			PortsParams: &rollout.PortsParams{Months: []string{"2026-02"}, GroupBy: rollout.GroupByBoth},
			Ports: &rollout.PortsResult{Grouped: true, Rows: []rollout.PortsRow{
				{Month: "2026-02", Locality: "Астана", Ports: 300},
				{Month: "2026-02", Locality: "Алматы", Ports: 50},
			}},
		})
		assert.Contains(t, md, "**Сданные порты по месяцам и населённым пунктам (2026-02):**")
		assertTableRow(t, md, "Месяц", "Населённый пункт", "Порты")
		assertTableRow(t, md, "2026-02", "Астана", "300")
		assert.Contains(t, md, "**Итого:** 350")
	})

	t.Run("no data variants", func(t *testing.T) {
		t.Parallel()

		total := format.Markdown(engine.Outcome{Kind: engine.KindNoData, Intent: rollout.IntentTotalPorts, Ports: &rollout.PortsResult{}})
		assert.Contains(t, total, "Сданные порты пока не зарегистрированы")

		scalar := format.Markdown(engine.Outcome{
			Kind:        engine.KindNoData,
			Intent:      rollout.IntentPorts,
			PortsParams: &rollout.PortsParams{Locality: "Караганда"},
			Ports:       &rollout.PortsResult{},
		})
		assert.Equal(t, "**Данных нет.** Сданных портов по заданным фильтрам (Караганда) не найдено.", scalar)

		grouped := format.Markdown(engine.Outcome{
			Kind:        engine.KindNoData,
			Intent:      rollout.IntentPorts,
			PortsParams: &rollout.PortsParams{GroupBy: rollout.GroupByMonth},
			Ports:       &rollout.PortsResult{Grouped: true},
		})
		assert.Equal(t, "**Данных нет.** Нет строк по заданным фильтрам.", grouped)
	})
}

func TestRollout_Format_Addresses(t *testing.T) {
	t.Parallel()

	delivered := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	t.Run("single row is a card", func(t *testing.T) {
		t.Parallel()

		md := format.Markdown(engine.Outcome{
			Kind:          engine.KindAddresses,
			AddressParams: &rollout.AddressParams{AddressSearch: "Сарайшык 4"},
			Addresses: &rollout.AddressResult{Rows: []rollout.DeliveredAddress{
				{Address: "ул. Сарайшык, 4", Locality: "Астана", Ports: 32, DeliveredAt: delivered},
			}},
		})
		assert.Contains(t, md, "**Адрес сдан.**")
		assert.Contains(t, md, "- **Адрес:** ул. Сарайшык, 4")
		assert.Contains(t, md, "- **Дата сдачи:** 10.02.2026")
	})

	t.Run("several rows are a table", func(t *testing.T) {
		t.Parallel()

		md := format.Markdown(engine.Outcome{
			Kind:          engine.KindAddresses,
			AddressParams: &rollout.AddressParams{Locality: "Астана"},
			Addresses: &rollout.AddressResult{Rows: []rollout.DeliveredAddress{
				{Address: "ул. Сарайшык, 4", Locality: "Астана", Ports: 32, DeliveredAt: delivered},
				{Address: "ул. A|B, 1", Locality: "Астана", Ports: 8, DeliveredAt: delivered},
			}},
		})
		assert.Contains(t, md, "**Сданные адреса (Астана):** 2")
		assertTableRow(t, md, "ул. Сарайшык, 4", "Астана", "32", "10.02.2026")
		assert.Contains(t, md, `ул. A\|B, 1`)
		assert.Contains(t, md, "**Итого портов:** 40")
	})

	t.Run("fallback status card", func(t *testing.T) {
		t.Parallel()

		md := format.Markdown(engine.Outcome{
			Kind: engine.KindAddressStatus,
			Addresses: &rollout.AddressResult{FallbackAttempted: true, NotFoundRows: []rollout.AddressStatus{
				{Address: "ул. Бекарыс, 5/1", Locality: "Астана", Ports: 64, RawStatus: rollout.StatusInProgress},
				{Address: "ул. Абая, 7", Ports: 40, RawStatus: rollout.StatusConnectionAllowed, DeliveredAt: &delivered, Excluded: true},
			}},
		})
		assert.Contains(t, md, "**Адрес не найден среди сданных.**")
		assert.Contains(t, md, "**Статус:** в работе (ведутся СМР)")
		assert.Contains(t, md, "**Населённый пункт:** н/д")
		assert.Contains(t, md, "_Исключён из проекта сети._")
		assert.Equal(t, 1, strings.Count(md, "**Дата сдачи:**"))
	})

	t.Run("not found distinguishes search from listing", func(t *testing.T) {
		t.Parallel()

		search := format.Markdown(engine.Outcome{Kind: engine.KindNotFound, AddressParams: &rollout.AddressParams{AddressSearch: "Несуществующая 1"}})
		assert.Contains(t, search, "**Адрес «Несуществующая 1» не найден.**")

		listing := format.Markdown(engine.Outcome{Kind: engine.KindNotFound, AddressParams: &rollout.AddressParams{Locality: "Шымкент", Months: []string{"2026-03"}}})
		assert.Equal(t, "**Сданные адреса по заданным фильтрам (Шымкент; 2026-03) не найдены.**", listing)
	})
}

func TestRollout_Format_Objects(t *testing.T) {
	t.Parallel()

	md := format.Markdown(engine.Outcome{
		Kind:    engine.KindObjectsStatus,
		Objects: &rollout.ObjectsStatusCounts{Delivered: 12000, InProgress: 30, Excluded: 4},
	})
	assertTableRow(t, md, "Сдано", "12"+nbsp+"000")
	assertTableRow(t, md, "В работе / на проверке", "30")
	assertTableRow(t, md, "Исключено из проекта", "4")
	assert.True(t, strings.HasSuffix(md, "**Итого:** 12"+nbsp+"034"))
}

// assertTableRow checks that some markdown table line has exactly the given cells.
func assertTableRow(t *testing.T, md string, cells ...string) {
	t.Helper()
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
			continue
		}
		parts := strings.Split(strings.Trim(line, "|"), "|")
		if len(parts) != len(cells) {
			continue
		}
		match := true
		for i := range parts {
			if strings.TrimSpace(parts[i]) != cells[i] {
				match = false
				break
			}
		}
		if match {
			return
		}
	}
	require.Failf(t, "table row not found", "cells %q in:\n%s", cells, md)
}
