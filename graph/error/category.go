package grapherror

// Category is the main class of an error reported to a live-preview client.
type Category string

const (
	// CategoryProtocol covers malformed messages and failed handshakes
	CategoryProtocol Category = "protocol"

	// CategoryEvent covers well-formed events the engine rejected
	CategoryEvent Category = "event"

	// CategoryWebSocket covers connection and transport failures
	CategoryWebSocket Category = "websocket"

	// CategoryBuild covers data loading and graph building failures
	CategoryBuild Category = "build"

	// CategoryInternal covers everything else
	CategoryInternal Category = "internal"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Protocol subcategories
const (
	SubcategoryProtocolDecode  = "decode"
	SubcategoryProtocolHello   = "hello"
	SubcategoryProtocolVersion = "version"
)

// Event subcategories
const (
	SubcategoryEventUnknown     = "unknown_type"
	SubcategoryEventRateLimited = "rate_limited"
	SubcategoryEventRejected    = "rejected"
	SubcategoryEventNotReady    = "not_ready"
)

// WebSocket subcategories
const (
	SubcategoryWSRead    = "read"
	SubcategoryWSWrite   = "write"
	SubcategoryWSUpgrade = "upgrade"
	SubcategoryWSClosed  = "closed"
)

// Build subcategories
const (
	SubcategoryBuildSource = "source"
	SubcategoryBuildGraph  = "graph"
)
