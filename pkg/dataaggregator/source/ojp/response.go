package ojp

import (
	"encoding/xml"
	"io"

	"github.com/travigo/pendler/pkg/dataaggregator/source"
	"golang.org/x/net/html/charset"
)

type stopEventResponseDocument struct {
	XMLName  xml.Name           `xml:"OJP"`
	Delivery *stopEventDelivery `xml:"OJPResponse>ServiceDelivery>OJPStopEventDelivery"`
}

type stopEventDelivery struct {
	Results []stopEventResult `xml:"StopEventResult"`
}

type stopEventResult struct {
	StopEvent stopEvent `xml:"StopEvent"`
}

type stopEvent struct {
	PreviousCalls []callAtStop `xml:"PreviousCall>CallAtStop"`
	ThisCall      *callAtStop  `xml:"ThisCall>CallAtStop"`
	OnwardCalls   []callAtStop `xml:"OnwardCall>CallAtStop"`
	Service       service      `xml:"Service"`
}

type callAtStop struct {
	StopPointRef  string `xml:"StopPointRef"`
	StopPointName string `xml:"StopPointName>Text"`

	PlannedQuay   string `xml:"PlannedQuay>Text"`
	EstimatedQuay string `xml:"EstimatedQuay>Text"`

	ServiceArrival   *serviceTime `xml:"ServiceArrival"`
	ServiceDeparture *serviceTime `xml:"ServiceDeparture"`
}

type serviceTime struct {
	TimetabledTime string `xml:"TimetabledTime"`
	EstimatedTime  string `xml:"EstimatedTime"`
}

type service struct {
	JourneyRef        string `xml:"JourneyRef"`
	PublishedLineName string `xml:"PublishedLineName>Text"`
	OperatorRef       string `xml:"OperatorRef"`
	DestinationText   string `xml:"DestinationText>Text"`
}

func (t *serviceTime) timetabled() string {
	if t == nil {
		return ""
	}
	return t.TimetabledTime
}

func (t *serviceTime) estimated() string {
	if t == nil {
		return ""
	}
	return t.EstimatedTime
}

func decodeStopEventResponse(reader io.Reader) (*stopEventDelivery, error) {
	var document stopEventResponseDocument

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	if err := d.Decode(&document); err != nil {
		return nil, &source.ProtocolError{Upstream: upstreamName, Message: "undecodable stop event response", Err: err}
	}

	if document.Delivery == nil {
		return nil, &source.ProtocolError{Upstream: upstreamName, Message: "response has no stop event delivery"}
	}

	return document.Delivery, nil
}
