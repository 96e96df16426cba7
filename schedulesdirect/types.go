package schedulesdirect

import "encoding/json"

// Status is the account and system status.
type Status struct {
	Code           int            `json:"code"`
	Account        Account        `json:"account"`
	Lineups        []Lineup       `json:"lineups"`
	LastDataUpdate string         `json:"lastDataUpdate"`
	Notifications  []any          `json:"notifications"`
	SystemStatus   []SystemStatus `json:"systemStatus"`
	ServerID       string         `json:"serverID"`
	Datetime       string         `json:"datetime"`
}

// Account describes the subscription.
type Account struct {
	Expires    string `json:"expires"`
	Messages   []any  `json:"messages"`
	MaxLineups int    `json:"maxLineups"`
}

// SystemStatus is one entry of the service's health report.
type SystemStatus struct {
	Date    string `json:"date"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// IsOnline reports whether the most recent system status entry is "Online".
func (s *Status) IsOnline() bool {
	if len(s.SystemStatus) == 0 {
		return false
	}
	return s.SystemStatus[0].Status == "Online"
}

// Service is an entry of the available services listing.
type Service struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	URI         string `json:"uri"`
}

// Country is a supported country, grouped by region in Countries.
type Country struct {
	FullName          string `json:"fullName"`
	ShortName         string `json:"shortName"`
	PostalCodeExample string `json:"postalCodeExample"`
	PostalCode        string `json:"postalCode"`
	OnePostalCode     bool   `json:"onePostalCode,omitempty"`
}

// Lineup identifies a channel lineup.
type Lineup struct {
	Lineup    string `json:"lineup"`
	Name      string `json:"name,omitempty"`
	Transport string `json:"transport,omitempty"`
	Location  string `json:"location,omitempty"`
	Modified  string `json:"modified,omitempty"`
	URI       string `json:"uri"`
	IsDeleted bool   `json:"isDeleted,omitempty"`
}

// Headend is a provider serving a postal code, with its lineups.
type Headend struct {
	Headend   string   `json:"headend"`
	Transport string   `json:"transport"`
	Location  string   `json:"location"`
	Lineups   []Lineup `json:"lineups"`
}

// LineupPreview is a channel as listed by the preview endpoint.
type LineupPreview struct {
	Channel   string `json:"channel"`
	Name      string `json:"name"`
	CallSign  string `json:"callsign"`
	Affiliate string `json:"affiliate,omitempty"`
}

// ChangeResponse is the reply to adding or removing an account lineup.
type ChangeResponse struct {
	Code             int         `json:"code"`
	Response         string      `json:"response"`
	Message          string      `json:"message"`
	ServerID         string      `json:"serverID"`
	ChangesRemaining json.Number `json:"changesRemaining"`
	Datetime         string      `json:"datetime"`
}

// Mapping is a lineup's channel map and station list.
type Mapping struct {
	Map      []ChannelMap `json:"map"`
	Stations []Station    `json:"stations"`
	Metadata MapMetadata  `json:"metadata"`
}

// ChannelMap ties a station to a tuning position. Which fields are set
// depends on the lineup's transport.
type ChannelMap struct {
	StationID            string `json:"stationID"`
	Channel              string `json:"channel,omitempty"`
	UhfVhf               int    `json:"uhfVhf,omitempty"`
	AtscMajor            int    `json:"atscMajor,omitempty"`
	AtscMinor            int    `json:"atscMinor,omitempty"`
	VirtualChannel       string `json:"virtualChannel,omitempty"`
	ChannelMajor         int    `json:"channelMajor,omitempty"`
	ChannelMinor         int    `json:"channelMinor,omitempty"`
	ProviderCallSign     string `json:"providerCallsign,omitempty"`
	LogicalChannelNumber string `json:"logicalChannelNumber,omitempty"`
	MatchType            string `json:"matchType,omitempty"`
	FrequencyHz          int64  `json:"frequencyHz,omitempty"`
	ServiceID            int    `json:"serviceID,omitempty"`
	NetworkID            int    `json:"networkID,omitempty"`
	TransportID          int    `json:"transportID,omitempty"`
	Polarization         string `json:"polarization,omitempty"`
	DeliverySystem       string `json:"deliverySystem,omitempty"`
	ModulationSystem     string `json:"modulationSystem,omitempty"`
	SymbolRate           int    `json:"symbolrate,omitempty"`
	FEC                  string `json:"fec,omitempty"`
}

// MapMetadata describes the mapped lineup.
type MapMetadata struct {
	Lineup    string `json:"lineup"`
	Modified  string `json:"modified"`
	Transport string `json:"transport"`
}

// Station is a broadcaster or channel.
type Station struct {
	StationID           string        `json:"stationID"`
	Name                string        `json:"name"`
	CallSign            string        `json:"callsign"`
	Affiliate           string        `json:"affiliate,omitempty"`
	IsCommercialFree    bool          `json:"isCommercialFree,omitempty"`
	BroadcastLanguage   []string      `json:"broadcastLanguage,omitempty"`
	DescriptionLanguage []string      `json:"descriptionLanguage,omitempty"`
	Broadcaster         *Broadcaster  `json:"broadcaster,omitempty"`
	StationLogo         []StationLogo `json:"stationLogo,omitempty"`
}

// Broadcaster is the station's location.
type Broadcaster struct {
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalcode"`
	Country    string `json:"country"`
}

// StationLogo is a logo image reference.
type StationLogo struct {
	URL    string `json:"URL"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	MD5    string `json:"md5"`
	Source string `json:"source"`
}

// StationRequest selects a station, and optionally specific dates, for the
// schedule endpoints.
type StationRequest struct {
	StationID string   `json:"stationID"`
	Date      []string `json:"date,omitempty"`
}

// ScheduleMD5 is the hash of one station-day schedule.
type ScheduleMD5 struct {
	Code         int    `json:"code"`
	Message      string `json:"message"`
	LastModified string `json:"lastModified"`
	MD5          string `json:"md5"`
}

// StationSchedule is the airings of one station for one day. A station the
// service could not serve carries a non-zero Code and no programs.
type StationSchedule struct {
	StationID string           `json:"stationID"`
	Programs  []Airing         `json:"programs"`
	Metadata  ScheduleMetadata `json:"metadata"`
	Code      int              `json:"code,omitempty"`
	Response  string           `json:"response,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// ScheduleMetadata identifies the schedule day.
type ScheduleMetadata struct {
	Modified  string `json:"modified"`
	MD5       string `json:"md5"`
	StartDate string `json:"startDate"`
}

// Airing is one program slot in a schedule.
type Airing struct {
	ProgramID           string     `json:"programID"`
	AirDateTime         string     `json:"airDateTime"`
	Duration            int        `json:"duration"`
	MD5                 string     `json:"md5"`
	New                 bool       `json:"new,omitempty"`
	Premiere            bool       `json:"premiere,omitempty"`
	IsPremiereOrFinale  string     `json:"isPremiereOrFinale,omitempty"`
	LiveTapeDelay       string     `json:"liveTapeDelay,omitempty"`
	Signed              bool       `json:"signed,omitempty"`
	Educational         bool       `json:"educational,omitempty"`
	Catchup             bool       `json:"catchup,omitempty"`
	Continued           bool       `json:"continued,omitempty"`
	JoinedInProgress    bool       `json:"joinedInProgress,omitempty"`
	LeftInProgress      bool       `json:"leftInProgress,omitempty"`
	SubjectToBlackout   bool       `json:"subjectToBlackout,omitempty"`
	TimeApproximate     bool       `json:"timeApproximate,omitempty"`
	CableInTheClassroom bool       `json:"cableInTheClassroom,omitempty"`
	ProgramBreak        bool       `json:"programBreak,omitempty"`
	Free                bool       `json:"free,omitempty"`
	AudioProperties     []string   `json:"audioProperties,omitempty"`
	VideoProperties     []string   `json:"videoProperties,omitempty"`
	Ratings             []Rating   `json:"ratings,omitempty"`
	MultiPart           *MultiPart `json:"multipart,omitempty"`
}

// Rating is a content rating assigned by a ratings body.
type Rating struct {
	Body      string `json:"body"`
	Code      string `json:"code"`
	SubRating string `json:"subRating,omitempty"`
}

// MultiPart marks an airing as one part of a multi-part program.
type MultiPart struct {
	PartNumber int `json:"partNumber"`
	TotalParts int `json:"totalParts"`
}

// Program is the descriptive metadata for a program ID.
type Program struct {
	ProgramID       string                     `json:"programID"`
	ResourceID      string                     `json:"resourceID,omitempty"`
	Titles          []Title                    `json:"titles"`
	EpisodeTitle150 string                     `json:"episodeTitle150,omitempty"`
	Descriptions    Descriptions               `json:"descriptions"`
	OriginalAirDate string                     `json:"originalAirDate,omitempty"`
	Genres          []string                   `json:"genres,omitempty"`
	EntityType      string                     `json:"entityType"`
	ShowType        string                     `json:"showType,omitempty"`
	Metadata        []map[string]EpisodeNumber `json:"metadata,omitempty"`
	Cast            []Person                   `json:"cast,omitempty"`
	Crew            []Person                   `json:"crew,omitempty"`
	ContentRating   []ContentRating            `json:"contentRating,omitempty"`
	OfficialURL     string                     `json:"officialURL,omitempty"`
	HasImageArtwork bool                       `json:"hasImageArtwork,omitempty"`
	MD5             string                     `json:"md5"`
	Code            int                        `json:"code,omitempty"`
	Message         string                     `json:"message,omitempty"`
}

// Title returns the first listed title, or "" when the program has none.
func (p *Program) Title() string {
	if len(p.Titles) == 0 {
		return ""
	}
	return p.Titles[0].Title120
}

// Title is a program title of at most 120 characters.
type Title struct {
	Title120 string `json:"title120"`
}

// Descriptions groups short and long descriptions.
type Descriptions struct {
	Description100  []Description `json:"description100,omitempty"`
	Description1000 []Description `json:"description1000,omitempty"`
}

// Description is a description in a given language.
type Description struct {
	DescriptionLanguage string `json:"descriptionLanguage"`
	Description         string `json:"description"`
}

// EpisodeNumber is a season/episode numbering from one metadata provider.
type EpisodeNumber struct {
	Season        int `json:"season"`
	Episode       int `json:"episode,omitempty"`
	TotalEpisodes int `json:"totalEpisodes,omitempty"`
}

// Person is a cast or crew member.
type Person struct {
	BillingOrder  string `json:"billingOrder"`
	Role          string `json:"role"`
	NameID        string `json:"nameId"`
	PersonID      string `json:"personId"`
	Name          string `json:"name"`
	CharacterName string `json:"characterName,omitempty"`
}

// ContentRating is a program-level rating.
type ContentRating struct {
	Body    string `json:"body"`
	Code    string `json:"code"`
	Country string `json:"country,omitempty"`
}
