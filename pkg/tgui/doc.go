// Package tgui provides small Telegram UI helpers:
//   - Inline keyboard builders
//   - Callback data helpers (ns:action:payload)
//   - Safe-by-default HTML text for ParseMode="HTML"
package tgui
