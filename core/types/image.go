package types

type ImageSource string

const (
	ImageSourceTier    ImageSource = "tier"
	ImageSourceEvent   ImageSource = "event"
	ImageSourceDefault ImageSource = "default"
)

// Image is a resolved display image and where it came from.
type Image struct {
	URI    string
	Source ImageSource
}

// ResolveImage picks the tier image, then the event image, then defaultURI.
// Empty strings count as absent.
func ResolveImage(tierImage, eventImage *string, defaultURI string) Image {
	if tierImage != nil && *tierImage != "" {
		return Image{URI: *tierImage, Source: ImageSourceTier}
	}
	if eventImage != nil && *eventImage != "" {
		return Image{URI: *eventImage, Source: ImageSourceEvent}
	}
	return Image{URI: defaultURI, Source: ImageSourceDefault}
}

// TicketImage resolves the display image of a tier within its event.
func TicketImage(tier *TicketType, event *Event, defaultURI string) Image {
	var tierImage, eventImage *string
	if tier != nil {
		tierImage = tier.Image
	}
	if event != nil {
		eventImage = event.Image
	}
	return ResolveImage(tierImage, eventImage, defaultURI)
}
