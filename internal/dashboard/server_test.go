package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/KaramelBytes/salespulse/internal/sales"
)

const regionCSV = `Date,ProductType,MarketingStrategy,InteractionType,QuantitySold,Converted,Anomaly,Region
2023-01-01,Electronics,Email,Click,1000,1,0,North
2023-01-02,Electronics,TV,View,2000,0,0,South
2023-01-03,Clothing,Email,Purchase,3000,1,0,North
2023-01-04,Clothing,Social Media,Click,4000,0,1,East
2023-01-05,Electronics,Email,Inquiry,5000,1,0,North
2023-01-06,Clothing,TV,View,6000,0,0,South
2023-01-07,Electronics,Email,Click,7000,1,0,East
2023-01-08,Clothing,Influencer,Click,8000,0,1,North
2023-01-09,Electronics,TV,View,9000,1,0,South
`

func testTable(t *testing.T) *sales.Table {
	t.Helper()
	tbl, err := sales.LoadReader(strings.NewReader(regionCSV), "sales.csv", sales.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	return tbl
}

func setupServer(t *testing.T, variant string) http.Handler {
	t.Helper()
	v, err := LookupVariant(variant)
	if err != nil {
		t.Fatalf("LookupVariant: %v", err)
	}
	s, err := New(testTable(t), v)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPageSectionsInOrder(t *testing.T) {
	h := setupServer(t, "product")
	rr := get(t, h, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
	body := rr.Body.String()
	sections := []string{
		"Summary Statistics",
		"Product Sales Over Time",
		"Sales Distribution by Marketing Strategy",
		"Conversion Rates by Interaction Type",
		"Anomaly Detection",
		"Sales Comparison by Product Type",
		"Sales Forecast (Next 7 Days)",
		"<footer>",
	}
	last := -1
	for _, s := range sections {
		i := strings.Index(body, s)
		if i < 0 {
			t.Fatalf("page missing section %q", s)
		}
		if i < last {
			t.Fatalf("section %q out of order", s)
		}
		last = i
	}
	// product variant defaults to the first product in data order, no All option
	if !strings.Contains(body, "<option selected>Electronics</option>") {
		t.Fatalf("expected Electronics preselected")
	}
	if strings.Contains(body, ">All</option>") {
		t.Fatalf("product variant should not offer All")
	}
}

func TestViewDefaultsAndFilters(t *testing.T) {
	h := setupServer(t, "product")
	var view View
	rr := get(t, h, "/api/view")
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Rows != 5 {
		t.Fatalf("default product view: expected 5 Electronics rows, got %d", view.Rows)
	}
	if view.Title != "Sales of Electronics over Time" {
		t.Fatalf("title: %q", view.Title)
	}

	rr = get(t, h, "/api/view?product=Clothing&start=2023-01-04&end=2023-01-08&strategy=TV&strategy=Influencer")
	view = View{}
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Rows != 2 || view.AnomalyCount != 1 {
		t.Fatalf("filtered view: rows=%d anomalies=%d", view.Rows, view.AnomalyCount)
	}
	if sales.Sum(view.Totals) != 14000 {
		t.Fatalf("totals: %+v", view.Totals)
	}
}

func TestRegionScaleAppliesEverywhere(t *testing.T) {
	h := setupServer(t, "region")
	var view View
	rr := get(t, h, "/api/view?scale=thousands")
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Rows != 9 {
		t.Fatalf("All selectors should keep every row, got %d", view.Rows)
	}
	if got := sales.Sum(view.Totals); got != 45 {
		t.Fatalf("scaled totals: %v", got)
	}
	for _, g := range view.ByStrategy {
		if g.Key == "Email" && g.Value != 4 {
			t.Fatalf("scaled Email mean: %v", g.Value)
		}
	}
	if view.Summary[0].Max != 9 {
		t.Fatalf("scaled summary max: %v", view.Summary[0].Max)
	}
	if view.Summary[1].Column != sales.ColConverted || view.Summary[1].Max != 1 {
		t.Fatalf("conversion stats must not be scaled: %+v", view.Summary[1])
	}
	for _, a := range view.Anomalies {
		if a.QuantitySold != 4 && a.QuantitySold != 8 {
			t.Fatalf("anomaly quantity not scaled: %+v", a)
		}
	}
	if len(view.Forecast) != 3 || view.Forecast[0].Value != 4 {
		t.Fatalf("forecast: %+v", view.Forecast)
	}
	if view.QuantityLabel != "Quantity Sold (thousands)" {
		t.Fatalf("label: %q", view.QuantityLabel)
	}

	rr = get(t, h, "/api/view?region=North")
	view = View{}
	_ = json.Unmarshal(rr.Body.Bytes(), &view)
	if view.Rows != 4 || len(view.Totals) != 1 || view.Totals[0].Key != "North" {
		t.Fatalf("region filter: rows=%d totals=%+v", view.Rows, view.Totals)
	}
}

func TestShowAnomaliesCheckbox(t *testing.T) {
	h := setupServer(t, "region")
	body := get(t, h, "/").Body.String()
	if !strings.Contains(body, "Anomalies detected: 2") {
		t.Fatalf("anomalies should show by default")
	}
	body = get(t, h, "/?applied=1").Body.String()
	if strings.Contains(body, "Anomalies detected") {
		t.Fatalf("unchecked box should hide anomalies")
	}
	body = get(t, h, "/?product=Electronics").Body.String()
	if !strings.Contains(body, "No anomalies detected in the selected period.") {
		t.Fatalf("expected no-anomalies note")
	}
}

func TestChartsRoute(t *testing.T) {
	h := setupServer(t, "product")
	for _, name := range chartNames {
		rr := get(t, h, "/charts/"+name+".svg")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", name, rr.Code, rr.Body.String())
		}
		if ct := rr.Header().Get("Content-Type"); ct != "image/svg+xml" {
			t.Fatalf("%s: content type %q", name, ct)
		}
		if !strings.Contains(rr.Body.String(), "<svg") {
			t.Fatalf("%s: expected svg body", name)
		}
	}
	rr := get(t, h, "/charts/sales.svg?start=2030-01-01")
	if !strings.Contains(rr.Body.String(), "No data for the current filters") {
		t.Fatalf("empty view should render the placeholder")
	}
	if rr := get(t, h, "/charts/pie.svg"); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown chart: expected 404, got %d", rr.Code)
	}
}

func TestBadQueryIs400(t *testing.T) {
	h := setupServer(t, "region")
	for _, q := range []string{"start=yesterday", "min_qty=lots", "scale=billions", "start=2023-01-05&end=2023-01-01"} {
		rr := get(t, h, "/api/view?"+q)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "invalid_query") {
			t.Fatalf("%s: expected json error body", q)
		}
	}
}

func TestRegionVariantNeedsRegionColumn(t *testing.T) {
	tbl, err := sales.LoadReader(strings.NewReader("Date,ProductType,MarketingStrategy,InteractionType,QuantitySold,Converted\n2023-01-01,A,B,C,1,0\n"), "small.csv", sales.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	v, _ := LookupVariant("region")
	if _, err := New(tbl, v); err == nil {
		t.Fatalf("expected missing Region error")
	}
	if _, err := LookupVariant("weekly"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
}

func TestWebsocketRerun(t *testing.T) {
	srv := httptest.NewServer(setupServer(t, "product"))
	defer srv.Close()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsRequest{Query: url.Values{"product": {"Clothing"}}.Encode()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp wsResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Error != "" || resp.View == nil || resp.View.Rows != 4 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !strings.Contains(resp.Query, "product=Clothing") {
		t.Fatalf("query not echoed: %q", resp.Query)
	}
	// table sections follow the new filter, not the initial page
	if !strings.Contains(resp.Sections["summary"], "<td>4.0000</td>") {
		t.Fatalf("summary section not rerun: %s", resp.Sections["summary"])
	}
	if !strings.Contains(resp.Sections["anomalies"], "Anomalies detected: 2") ||
		!strings.Contains(resp.Sections["anomalies"], "<td>8000</td>") {
		t.Fatalf("anomaly section not rerun: %s", resp.Sections["anomalies"])
	}

	if err := conn.WriteJSON(wsRequest{Query: "product=Electronics&applied=1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp = wsResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.View == nil || resp.View.Rows != 5 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if strings.Contains(resp.Sections["anomalies"], "Anomalies detected") {
		t.Fatalf("unchecked box should empty the anomaly section: %s", resp.Sections["anomalies"])
	}
	if !strings.Contains(resp.Sections["summary"], "<td>5.0000</td>") {
		t.Fatalf("summary should count 5 rows: %s", resp.Sections["summary"])
	}

	if err := conn.WriteJSON(wsRequest{Query: "min_qty=abc"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp = wsResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Error == "" {
		t.Fatalf("expected error for bad min_qty")
	}
}

func TestHealthz(t *testing.T) {
	rr := get(t, setupServer(t, "product"), "/healthz")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz: %d %s", rr.Code, rr.Body.String())
	}
}

func TestLoneBoundOutsideDataGivesEmptyView(t *testing.T) {
	h := setupServer(t, "region")
	for _, q := range []string{"start=2030-01-01", "end=2000-01-01"} {
		rr := get(t, h, "/api/view?"+q)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", q, rr.Code, rr.Body.String())
		}
		var view View
		if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if view.Rows != 0 || len(view.Totals) != 0 {
			t.Fatalf("%s: expected empty view, got rows=%d", q, view.Rows)
		}
		if rr := get(t, h, "/?"+q); rr.Code != http.StatusOK {
			t.Fatalf("%s: page expected 200, got %d", q, rr.Code)
		}
	}
}

func TestLineAndStrategyPlotMeans(t *testing.T) {
	csv := "Date,ProductType,MarketingStrategy,InteractionType,QuantitySold,Converted\n" +
		"2023-01-01,Books,Email,Click,10,1\n" +
		"2023-01-01,Books,Email,View,20,0\n" +
		"2023-01-02,Books,TV,View,6,0\n"
	tbl, err := sales.LoadReader(strings.NewReader(csv), "means.csv", sales.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	v, _ := LookupVariant("product")
	q, err := ParseQuery(url.Values{}, v, tbl)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	view := Compute(tbl, v, q)
	if len(view.SalesOverTime) != 2 || view.SalesOverTime[0].Value != 15 {
		t.Fatalf("sales over time should plot daily means: %+v", view.SalesOverTime)
	}
	if len(view.ByStrategy) != 2 || view.ByStrategy[0].Key != "Email" || view.ByStrategy[0].Value != 15 {
		t.Fatalf("strategy bars should plot means: %+v", view.ByStrategy)
	}
	if len(view.Totals) != 1 || view.Totals[0].Value != 36 {
		t.Fatalf("totals should stay sums: %+v", view.Totals)
	}
}
