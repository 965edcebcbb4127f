package acapi

// State is the live state of an AC as reported by the vendor API.
type State struct {
	Serial       string  `json:"serial"`
	Power        bool    `json:"power"`
	Temperature  float64 `json:"temperature"`
	Mode         string  `json:"mode"`
	FanSpeed     string  `json:"fanSpeed"`
	Manufacturer string  `json:"manufacturer"`
	Motion       bool    `json:"motion"`
}

// Response models every reply of the vendor API. Code mirrors the HTTP
// status the vendor meant to report.
type Response struct {
	Message string `json:"message"`
	ACState *State `json:"acState"`
	Code    int    `json:"code"`
}

// OK reports whether the vendor reported a 2xx code.
func (r *Response) OK() bool {
	return r != nil && r.Code >= 200 && r.Code < 300
}

// Setting is the body of a set-state request.
type Setting struct {
	Power       bool    `json:"power"`
	Temperature float64 `json:"temperature"`
	Mode        string  `json:"mode"`
	FanSpeed    string  `json:"fanSpeed"`
}
