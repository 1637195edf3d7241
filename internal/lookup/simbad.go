package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultSIMBADURL is the CDS SIMBAD TAP service.
const DefaultSIMBADURL = "https://simbad.cds.unistra.fr/simbad/sim-tap"

// SIMBADOptions configures a SIMBAD client.
type SIMBADOptions struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64 // <= 0 disables throttling
	Fields        Fields
	Logger        *zap.Logger
	HTTPClient    *http.Client
}

// SIMBAD queries the SIMBAD TAP service with ADQL.
//
// It uses the synchronous endpoint:
//
//	POST {baseURL}/sync
//
// with form parameters REQUEST=doQuery, LANG=ADQL, FORMAT=json and QUERY.
type SIMBAD struct {
	baseURL string
	fields  Fields
	client  *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewSIMBAD constructs a SIMBAD client.
func NewSIMBAD(opts SIMBADOptions) *SIMBAD {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultSIMBADURL
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &SIMBAD{
		baseURL: baseURL,
		fields:  opts.Fields,
		client:  client,
		limiter: limiter,
		log:     log.Named("simbad"),
	}
}

// Query returns the ADQL statement used for name.
func (s *SIMBAD) Query(name string) string {
	cols := []string{"basic.ra AS ra", "basic.dec AS dec"}
	from := "basic JOIN ident ON ident.oidref = basic.oid"
	if s.fields.Magnitude {
		cols = append(cols, "allfluxes.V AS vmag")
		from += " LEFT JOIN allfluxes ON allfluxes.oidref = basic.oid"
	}
	if s.fields.SpectralType {
		cols = append(cols, "basic.sp_type AS sp_type")
	}
	return fmt.Sprintf("SELECT TOP 1 %s FROM %s WHERE ident.id = '%s'",
		strings.Join(cols, ", "), from, strings.ReplaceAll(name, "'", "''"))
}

// Lookup implements Lookup.
func (s *SIMBAD) Lookup(ctx context.Context, name string) (Result, error) {
	name = NormalizeName(name)
	if name == "" {
		return Result{}, fmt.Errorf("empty name: %w", ErrNotFound)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	form := url.Values{}
	form.Set("REQUEST", "doQuery")
	form.Set("LANG", "ADQL")
	form.Set("FORMAT", "json")
	form.Set("QUERY", s.Query(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sync", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("simbad request for %q: %w", name, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	s.log.Debug("query", zap.String("name", name), zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("simbad request for %q failed: HTTP %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	res, err := parseTAPJSON(body)
	if err != nil {
		return Result{}, fmt.Errorf("simbad response for %q: %w", name, err)
	}
	if !res.HasPosition() {
		return Result{}, ErrNotFound
	}
	return s.fields.mask(res), nil
}

// tapResponse is the subset of the TAP JSON output format used here.
type tapResponse struct {
	Metadata []struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Data [][]any `json:"data"`
}

// parseTAPJSON reads the first row of a TAP JSON document. No rows yields an
// empty Result.
func parseTAPJSON(body []byte) (Result, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var parsed tapResponse
	if err := dec.Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("cannot parse TAP response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return Result{}, nil
	}
	row := parsed.Data[0]

	var out Result
	for i, col := range parsed.Metadata {
		if i >= len(row) {
			break
		}
		v := cellText(row[i])
		switch strings.ToLower(col.Name) {
		case "ra":
			out.RA = v
		case "dec":
			out.Dec = v
		case "vmag", "v", "flux":
			out.Magnitude = v
		case "sp_type":
			out.SpectralType = v
		}
	}
	return out, nil
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		return x.String()
	case string:
		return strings.TrimSpace(x)
	default:
		return fmt.Sprint(x)
	}
}
