package schedulesdirect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Status retrieves account and system status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	return Execute[*Status](ctx, c, Request{Method: http.MethodGet, Path: c.apiPath("status")})
}

// Available lists the services the API offers.
func (c *Client) Available(ctx context.Context) ([]Service, error) {
	return Execute[[]Service](ctx, c, Request{Method: http.MethodGet, Path: c.apiPath("available")})
}

// Countries lists supported countries keyed by region.
func (c *Client) Countries(ctx context.Context) (map[string][]Country, error) {
	return Execute[map[string][]Country](ctx, c, Request{Method: http.MethodGet, Path: c.apiPath("available", "countries")})
}

// Languages maps language codes to their names.
func (c *Client) Languages(ctx context.Context) (map[string]string, error) {
	return Execute[map[string]string](ctx, c, Request{Method: http.MethodGet, Path: c.apiPath("available", "languages")})
}

// DVBS lists the satellites with DVB-S lineups.
func (c *Client) DVBS(ctx context.Context) ([]map[string]any, error) {
	return Execute[[]map[string]any](ctx, c, Request{Method: http.MethodGet, Path: c.apiPath("available", "dvb-s")})
}

// Transmitters maps DVB-T transmitter names to lineups for an ISO 3166-1 country.
func (c *Client) Transmitters(ctx context.Context, country string) (map[string]any, error) {
	return Execute[map[string]any](ctx, c, Request{Method: http.MethodGet, Path: c.apiPath("transmitters", url.PathEscape(country))})
}

// Headends lists providers serving a postal code.
func (c *Client) Headends(ctx context.Context, country, postalCode string) ([]Headend, error) {
	return Execute[[]Headend](ctx, c, Request{Method: http.MethodGet, Path: c.apiPath("headends"), Query: locationQuery(country, postalCode)})
}

// Lineups lists lineups available for a postal code.
func (c *Client) Lineups(ctx context.Context, country, postalCode string) ([]Lineup, error) {
	return Execute[[]Lineup](ctx, c, Request{Method: http.MethodGet, Path: c.apiPath("lineups"), Query: locationQuery(country, postalCode)})
}

// LineupPreview lists the channels of a lineup without adding it.
func (c *Client) LineupPreview(ctx context.Context, lineupID string) ([]LineupPreview, error) {
	return Execute[[]LineupPreview](ctx, c, Request{Method: http.MethodGet, Path: c.apiPath("lineups", "preview", url.PathEscape(lineupID))})
}

// LineupAdd adds a lineup to the account.
func (c *Client) LineupAdd(ctx context.Context, lineupID string) (*ChangeResponse, error) {
	return Execute[*ChangeResponse](ctx, c, Request{Method: http.MethodPut, Path: c.apiPath("lineups", url.PathEscape(lineupID))})
}

// LineupDelete removes a lineup from the account.
func (c *Client) LineupDelete(ctx context.Context, lineupID string) (*ChangeResponse, error) {
	return Execute[*ChangeResponse](ctx, c, Request{Method: http.MethodDelete, Path: c.apiPath("lineups", url.PathEscape(lineupID))})
}

// LineupMap retrieves the channel map for a lineup URI as returned by
// Status or Lineups, e.g. "/20141201/lineups/USA-NY67791-X".
func (c *Client) LineupMap(ctx context.Context, uri string) (*Mapping, error) {
	return Execute[*Mapping](ctx, c, Request{Method: http.MethodGet, Path: uri})
}

// SchedulesMD5 returns schedule hashes keyed by station ID and date.
func (c *Client) SchedulesMD5(ctx context.Context, stations []StationRequest) (map[string]map[string]ScheduleMD5, error) {
	return Execute[map[string]map[string]ScheduleMD5](ctx, c, Request{Method: http.MethodPost, Path: c.apiPath("schedules", "md5"), Body: stations})
}

// Schedules retrieves airings for the given stations. Use FetchSchedules
// for more stations than one request should carry.
func (c *Client) Schedules(ctx context.Context, stations []StationRequest) ([]StationSchedule, error) {
	return Execute[[]StationSchedule](ctx, c, Request{Method: http.MethodPost, Path: c.apiPath("schedules"), Body: stations})
}

// Programs retrieves program metadata by program ID.
func (c *Client) Programs(ctx context.Context, programIDs []string) ([]Program, error) {
	return Execute[[]Program](ctx, c, Request{Method: http.MethodPost, Path: c.apiPath("programs"), Body: programIDs})
}

// ProgramsGeneric retrieves series-level descriptions by program ID.
func (c *Client) ProgramsGeneric(ctx context.Context, programIDs []string) ([]Program, error) {
	return Execute[[]Program](ctx, c, Request{Method: http.MethodPost, Path: c.apiPath("programs", "generic"), Body: programIDs})
}

// MetadataPrograms retrieves artwork metadata by program ID.
func (c *Client) MetadataPrograms(ctx context.Context, programIDs []string) (json.RawMessage, error) {
	return Execute[json.RawMessage](ctx, c, Request{Method: http.MethodPost, Path: c.apiPath("metadata", "programs"), Body: programIDs})
}

// MetadataAwards retrieves award metadata by program ID.
func (c *Client) MetadataAwards(ctx context.Context, programIDs []string) (json.RawMessage, error) {
	return Execute[json.RawMessage](ctx, c, Request{Method: http.MethodPost, Path: c.apiPath("metadata", "awards"), Body: programIDs})
}

// XRef retrieves the cross-reference listing for program IDs as raw text.
func (c *Client) XRef(ctx context.Context, programIDs []string) (string, error) {
	return ExecuteRaw(ctx, c, Request{Method: http.MethodPost, Path: c.apiPath("xref"), Body: programIDs})
}

func locationQuery(country, postalCode string) url.Values {
	params := url.Values{}
	params.Set("country", country)
	params.Set("postalcode", postalCode)
	return params
}
