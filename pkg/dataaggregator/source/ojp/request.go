package ojp

import (
	"encoding/xml"
	"time"
)

const (
	namespaceOJP  = "http://www.vdv.de/ojp"
	namespaceSIRI = "http://www.siri.org.uk/siri"

	RequestorRef = "sbb_abfahrtstafel_prod"
)

type stopEventRequestDocument struct {
	XMLName   xml.Name `xml:"OJP"`
	Namespace string   `xml:"xmlns,attr"`
	SIRI      string   `xml:"xmlns:siri,attr"`
	Version   string   `xml:"version,attr"`

	ServiceRequest serviceRequest `xml:"OJPRequest>siri:ServiceRequest"`
}

type serviceRequest struct {
	RequestTimestamp string           `xml:"siri:RequestTimestamp"`
	RequestorRef     string           `xml:"siri:RequestorRef"`
	StopEventRequest stopEventRequest `xml:"OJPStopEventRequest"`
}

type stopEventRequest struct {
	RequestTimestamp string                 `xml:"siri:RequestTimestamp"`
	StopPlaceRef     string                 `xml:"Location>PlaceRef>StopPlaceRef"`
	Params           stopEventRequestParams `xml:"Params"`
}

type stopEventRequestParams struct {
	NumberOfResults      int    `xml:"NumberOfResults"`
	StopEventType        string `xml:"StopEventType"`
	IncludePreviousCalls bool   `xml:"IncludePreviousCalls"`
	IncludeOnwardCalls   bool   `xml:"IncludeOnwardCalls"`
	IncludeRealtimeData  bool   `xml:"IncludeRealtimeData"`
}

// BuildStopEventRequest renders the departure stop event request for a DiDok stop place
func BuildStopEventRequest(stopPlaceRef string, limit int, requestTime time.Time) ([]byte, error) {
	timestamp := requestTime.UTC().Format("2006-01-02T15:04:05.000Z")

	document := stopEventRequestDocument{
		Namespace: namespaceOJP,
		SIRI:      namespaceSIRI,
		Version:   "2.0",
		ServiceRequest: serviceRequest{
			RequestTimestamp: timestamp,
			RequestorRef:     RequestorRef,
			StopEventRequest: stopEventRequest{
				RequestTimestamp: timestamp,
				StopPlaceRef:     stopPlaceRef,
				Params: stopEventRequestParams{
					NumberOfResults:      limit,
					StopEventType:        "departure",
					IncludePreviousCalls: true,
					IncludeOnwardCalls:   true,
					IncludeRealtimeData:  true,
				},
			},
		},
	}

	body, err := xml.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), body...), nil
}
