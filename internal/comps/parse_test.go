package comps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureThreeRows = `
<table>
<tr id="dRow" data-price="4,250.00" data-currency="USD">
  <td id="imgCol"><img src="https://img.example.com/1-thumb.jpg" onclick='getImage("https://img.example.com/1-large.jpg","111")'></td>
  <td>
    <span id="titleText"><a href="https://www.ebay.com/itm/111">Rolex Submariner 16610 steel</a></span>
    <span id="auctionLabel">Fixed Price</span>
    <span id="dateText">Date: Mon 10 Nov 2025 17:52:42 EST</span>
    <span id="shipString">Shipping Price: 25.00</span>
    <div id="ebayOuter">eBay</div>
    <span class="props-data" style="display:none">Sale Price: 4250 - Best Offer Price: 4100 - Current Price: 4399.99 - Bids: 0 - Sale Type: bestoffer - SalePriceFull: 4250.00 USD</span>
  </td>
</tr>
<tr id="dRow" data-price="3100" data-currency="GBP">
  <td id="imgCol"><img src="https://img.example.com/2-thumb.jpg"></td>
  <td>
    <span id="titleText"><a href="https://www.ebay.co.uk/itm/222">Rolex Datejust 36</a></span>
    <span id="auctionLabel">auction</span>
    <span id="dateText">Date: Sat 08 Nov 2025 09:12:00 GMT</span>
    <div id="ebayOuter">eBay</div>
    <span class="props-data">Bids: 17</span>
  </td>
</tr>
<tr id="dRow" data-price="not a price">
  <td id="imgCol"></td>
  <td>
    <span id="titleText"><a href="https://www.ebay.com/itm/333">rolex watch parts lot</a></span>
    <span>Sold on eBay</span>
    <span class="props-data">SalePriceFull: 80.00 EUR</span>
  </td>
</tr>
</table>`

func TestParseCompsThreeRows(t *testing.T) {
	comps := ParseComps(fixtureThreeRows)
	require.Len(t, comps, 3)

	first := comps[0]
	require.NotNil(t, first.Title)
	assert.Equal(t, "Rolex Submariner 16610 steel", *first.Title)
	require.NotNil(t, first.Link)
	assert.Equal(t, "https://www.ebay.com/itm/111", *first.Link)
	require.NotNil(t, first.SalePrice)
	assert.Equal(t, 4250.00, *first.SalePrice)
	require.NotNil(t, first.Currency)
	assert.Equal(t, "USD", *first.Currency)
	require.NotNil(t, first.SaleType)
	assert.Equal(t, "Fixed Price", *first.SaleType)
	require.NotNil(t, first.DateText)
	assert.Equal(t, "Mon 10 Nov 2025 17:52:42 EST", *first.DateText)
	require.NotNil(t, first.Shipping)
	assert.Equal(t, "25.00", *first.Shipping)
	require.NotNil(t, first.Source)
	assert.Equal(t, "eBay", *first.Source)
	require.NotNil(t, first.ImageThumb)
	assert.Equal(t, "https://img.example.com/1-thumb.jpg", *first.ImageThumb)
	require.NotNil(t, first.ImageLarge)
	assert.Equal(t, "https://img.example.com/1-large.jpg", *first.ImageLarge)
	require.NotNil(t, first.BestOfferPrice)
	assert.Equal(t, 4100.0, *first.BestOfferPrice)
	require.NotNil(t, first.CurrentPrice)
	assert.Equal(t, 4399.99, *first.CurrentPrice)
	require.NotNil(t, first.Bids)
	assert.Equal(t, 0, *first.Bids)

	second := comps[1]
	require.NotNil(t, second.DateText)
	assert.Equal(t, "Sat 08 Nov 2025 09:12:00 GMT", *second.DateText)
	require.NotNil(t, second.Currency)
	assert.Equal(t, "GBP", *second.Currency)
	require.NotNil(t, second.Bids)
	assert.Equal(t, 17, *second.Bids)
	assert.Nil(t, second.Shipping)
	assert.Nil(t, second.ImageLarge)

	// third row has no date element at all
	third := comps[2]
	assert.Nil(t, third.DateText)
	assert.Nil(t, third.SalePrice, "data-price with no numeric token must parse to nil")
	require.NotNil(t, third.Currency, "currency falls back to the SalePriceFull suffix")
	assert.Equal(t, "EUR", *third.Currency)
	require.NotNil(t, third.Source, "literal eBay marker in the link text")
	assert.Equal(t, "eBay", *third.Source)
}

// The backend responds with bare <tr> fragments, not complete pages.
const fixtureBareFragment = `<tr id="dRow" data-price="4,250.00" data-currency="USD">
  <td id="imgCol"><img src="https://img.example.com/1-thumb.jpg"></td>
  <td>
    <span id="titleText"><a href="https://www.ebay.com/itm/111">Rolex Submariner 16610 steel</a></span>
    <span id="dateText">Date: Mon 10 Nov 2025 17:52:42 EST</span>
    <div id="ebayOuter">eBay</div>
  </td>
</tr>
<tr id="dRow" data-price="3100" data-currency="GBP">
  <td id="imgCol"></td>
  <td>
    <span id="titleText"><a href="https://www.ebay.co.uk/itm/222">Rolex Datejust 36</a></span>
    <div id="ebayOuter">eBay</div>
  </td>
</tr>`

func TestParseCompsBareRowFragment(t *testing.T) {
	comps := ParseComps(fixtureBareFragment)
	require.Len(t, comps, 2, "rows without an enclosing table must still parse")

	first := comps[0]
	require.NotNil(t, first.Title)
	assert.Equal(t, "Rolex Submariner 16610 steel", *first.Title)
	require.NotNil(t, first.SalePrice)
	assert.Equal(t, 4250.00, *first.SalePrice)
	require.NotNil(t, first.DateText)
	assert.Equal(t, "Mon 10 Nov 2025 17:52:42 EST", *first.DateText)
	require.NotNil(t, first.Source)
	assert.Equal(t, "eBay", *first.Source)

	second := comps[1]
	require.NotNil(t, second.Currency)
	assert.Equal(t, "GBP", *second.Currency)
	require.NotNil(t, second.Link)
	assert.Equal(t, "https://www.ebay.co.uk/itm/222", *second.Link)
}

func TestParseCompsSingleBareRow(t *testing.T) {
	comps := ParseComps(`<tr id="dRow" data-price="95"><td><span id="titleText"><a href="https://www.ebay.com/itm/9">card lot</a></span></td></tr>`)
	require.Len(t, comps, 1)
	require.NotNil(t, comps[0].SalePrice)
	assert.Equal(t, 95.0, *comps[0].SalePrice)
}

func TestParseCompsNoRows(t *testing.T) {
	for _, input := range []string{
		"",
		"<html><body><p>no results</p></body></html>",
		"<table><tr id='otherRow'><td>x</td></tr></table>",
		"plain text, not html at all",
	} {
		comps := ParseComps(input)
		assert.NotNil(t, comps)
		assert.Empty(t, comps, "input %q", input)
	}
}

func TestParseCompsPreservesDocumentOrder(t *testing.T) {
	comps := ParseComps(fixtureThreeRows)
	require.Len(t, comps, 3)
	assert.Equal(t, "Rolex Submariner 16610 steel", *comps[0].Title)
	assert.Equal(t, "Rolex Datejust 36", *comps[1].Title)
	assert.Equal(t, "rolex watch parts lot", *comps[2].Title)
}

func TestCleanMoney(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"4,250.00", f(4250)},
		{"95", f(95)},
		{"USD 131.62", f(131.62)},
		{"$1,200.50 shipped", f(1200.50)},
		{"", nil},
		{"free", nil},
		{"   ", nil},
	}

	for _, tt := range tests {
		got := cleanMoney(tt.raw)
		if tt.want == nil {
			assert.Nil(t, got, "cleanMoney(%q)", tt.raw)
			continue
		}
		require.NotNil(t, got, "cleanMoney(%q)", tt.raw)
		assert.Equal(t, *tt.want, *got, "cleanMoney(%q)", tt.raw)
	}
}

func TestCleanInt(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{"17", i(17)},
		{"1,024 bids", i(1024)},
		{"none", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := cleanInt(tt.raw)
		if tt.want == nil {
			assert.Nil(t, got, "cleanInt(%q)", tt.raw)
			continue
		}
		require.NotNil(t, got, "cleanInt(%q)", tt.raw)
		assert.Equal(t, *tt.want, *got, "cleanInt(%q)", tt.raw)
	}
}

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }
