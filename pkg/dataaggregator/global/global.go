package global

import (
	"github.com/travigo/pendler/pkg/dataaggregator"
	"github.com/travigo/pendler/pkg/dataaggregator/source/ojp"
	"github.com/travigo/pendler/pkg/dataaggregator/source/transportapi"
	"github.com/travigo/pendler/pkg/util"
)

// Setup builds the aggregator from the environment. The OJP source answers boards for the
// corridor stations and everything else falls through to the transport API.
func Setup(env map[string]string) (*dataaggregator.Aggregator, error) {
	aggregator := &dataaggregator.Aggregator{}

	transportAPISource := transportapi.Source{
		BaseURL: util.EnvironmentOrDefault(env, "PENDLER_TRANSPORT_API", transportapi.DefaultBaseURL),
	}

	ojpSource, err := ojp.NewSource(
		util.EnvironmentOrDefault(env, "PENDLER_OJP_ENDPOINT", ojp.DefaultEndpoint),
		env["PENDLER_OJP_API_KEY"],
		transportAPISource,
	)
	if err != nil {
		return nil, err
	}

	aggregator.RegisterSource(ojpSource)
	aggregator.RegisterSource(transportAPISource)

	return aggregator, nil
}
