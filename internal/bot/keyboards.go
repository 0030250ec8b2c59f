package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"tldrbot/internal/domain"
	"tldrbot/internal/pipeline"
)

const (
	settingsKeyboardRowSize = 5

	menuSettingsCallback = "menu_settings"
	menuHelpCallback     = "menu_help"
	menuCallback         = "menu"

	settingsExtractiveCallbackPrefix  = "settings_extractive_lines_"
	settingsAbstractiveCallbackPrefix = "settings_abstractive_lines_"
)

func getMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "⚙️ Settings", CallbackData: menuSettingsCallback},
				{Text: "❔ Help", CallbackData: menuHelpCallback},
			},
		},
	}
}

func getReturnKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "⬅️ Return to menu", CallbackData: menuCallback}},
		},
	}
}

// getSettingsKeyboard renders one block of buttons per setting with the
// current value marked.
func getSettingsKeyboard(settings *domain.UserSettings) *models.InlineKeyboardMarkup {
	var keyboard [][]models.InlineKeyboardButton

	keyboard = append(keyboard, linesRows("📄", settingsExtractiveCallbackPrefix, settings.ExtractiveLines)...)
	keyboard = append(keyboard, linesRows("✨", settingsAbstractiveCallbackPrefix, settings.AbstractiveLines)...)
	keyboard = append(keyboard, getReturnKeyboard().InlineKeyboard...)

	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func linesRows(icon string, prefix string, current int) [][]models.InlineKeyboardButton {
	var rows [][]models.InlineKeyboardButton

	for i := pipeline.MinLines; i <= pipeline.MaxLines; i += settingsKeyboardRowSize {
		var row []models.InlineKeyboardButton

		for j := i; j < i+settingsKeyboardRowSize && j <= pipeline.MaxLines; j++ {
			label := fmt.Sprintf("%s %d", icon, j)
			if j == current {
				label = fmt.Sprintf("✅ %d", j)
			}

			row = append(row, models.InlineKeyboardButton{
				Text:         label,
				CallbackData: prefix + strconv.Itoa(j),
			})
		}

		rows = append(rows, row)
	}

	return rows
}

// parseLinesCallback extracts the line count from settings callback data.
func parseLinesCallback(data string, prefix string) (int, bool, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(data), prefix)
	if !ok {
		return 0, false, nil
	}

	lines, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, true, fmt.Errorf("parse lines: %w", err)
	}

	if lines < pipeline.MinLines || lines > pipeline.MaxLines {
		return 0, true, fmt.Errorf("lines out of range: %d", lines)
	}

	return lines, true, nil
}
