package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/ui"
	"github.com/m3rciful/storebot/internal/shop"

	tele "gopkg.in/telebot.v4"
)

const searchCacheSeconds = 30

func (b *Bot) categories(c tele.Context) error {
	cats, err := b.shop.ListCategories(tghelpers.BuildContext(c))
	if err != nil {
		return b.fail(c, err)
	}
	if len(cats) == 0 {
		return tghelpers.SendText(c, msgNoCategories)
	}
	return tghelpers.SendText(c, "🗂 Categories:", categoriesMenu(cats))
}

func (b *Bot) category(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return b.badPayload(c, err)
	}
	products, err := b.shop.ListProducts(tghelpers.BuildContext(c), id)
	if err != nil {
		return b.fail(c, err)
	}
	if len(products) == 0 {
		return tghelpers.SendText(c, msgNoProducts, productsMenu(nil))
	}
	return tghelpers.SendText(c, "📚 Products:", productsMenu(products))
}

// product shows the product card, as a photo when an image reference is set.
func (b *Bot) product(c tele.Context) error {
	id, err := callbacks.PayloadInt64(c)
	if err != nil {
		return b.badPayload(c, err)
	}
	p, err := b.shop.Product(tghelpers.BuildContext(c), id)
	if err != nil {
		return b.fail(c, err)
	}
	if p.ImageRef != "" {
		return tghelpers.SendPhoto(c, p.ImageRef, productCaption(p), productMenu(p))
	}
	return tghelpers.SendMDV2(c, productCaption(p), productMenu(p))
}

// search answers inline queries with matching products.
func (b *Bot) search(c tele.Context) error {
	q := c.Query()
	if q == nil {
		return nil
	}
	products, err := b.shop.SearchProducts(tghelpers.BuildContext(c), q.Text, shop.DefaultSearchLimit)
	if err != nil {
		return err
	}
	results := make(tele.Results, 0, len(products))
	for _, p := range products {
		thumb := ""
		if strings.HasPrefix(p.ImageRef, "https://") {
			thumb = p.ImageRef
		}
		results = append(results, ui.NewArticleResult(
			strconv.FormatInt(p.ID, 10),
			p.Title,
			fmt.Sprintf("%s · %d in stock", money(p.Price), p.Stock),
			productCaption(p),
			thumb,
		))
	}
	return c.Answer(&tele.QueryResponse{
		Results:   results,
		CacheTime: searchCacheSeconds,
	})
}
