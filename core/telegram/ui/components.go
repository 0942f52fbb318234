package ui

import tele "gopkg.in/telebot.v4"

// NewArticleResult creates an inline article with a MarkdownV2 message body.
func NewArticleResult(id, title, description, text, thumbURL string) *tele.ArticleResult {
	result := &tele.ArticleResult{
		Title:       title,
		Description: description,
		Text:        text,
		ThumbURL:    thumbURL,
	}
	result.SetResultID(id)
	result.SetParseMode(tele.ModeMarkdownV2)
	return result
}
