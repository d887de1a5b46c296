// Command estimate prices a trip from a JSON file, either offline with the
// local cost engine or against a running API.
//
//	estimate -file trip.json [-tolls] [-json]
//	API_TOKEN=... estimate -file request.json -api http://localhost:8080
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetquote/internal/costs"
	"github.com/ukydev/fleetquote/internal/models"
	"github.com/ukydev/fleetquote/internal/quotation"
)

// tripFile is the offline input. Parameters default to the rate sheet a new
// tenant starts with.
type tripFile struct {
	Vehicle      models.Vehicle           `json:"vehicle"`
	Parameters   *models.SystemParameters `json:"parameters,omitempty"`
	Route        costs.RouteResult        `json:"route"`
	Flags        costs.Flags              `json:"flags"`
	ExtraMileage float64                  `json:"extra_mileage"`
}

type options struct {
	file    string
	apiURL  string
	token   string
	tolls   bool
	asJSON  bool
	timeout time.Duration
}

func main() {
	if err := run(os.Args[1:], os.Stdout, log.StandardLogger()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.WithError(err).Fatal("Estimate failed")
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	fs.StringVar(&opts.file, "file", "", "trip JSON file, - for stdin")
	fs.StringVar(&opts.apiURL, "api", os.Getenv("API_URL"), "API base URL; when set the file is sent as a quote request")
	fs.BoolVar(&opts.tolls, "tolls", false, "count tolls in the total when the trip asks for them")
	fs.BoolVar(&opts.asJSON, "json", false, "print the estimate as JSON")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "API request timeout")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.file == "" {
		return options{}, errors.New("-file is required")
	}
	opts.token = os.Getenv("API_TOKEN")
	return opts, nil
}

func run(args []string, stdout io.Writer, logger log.FieldLogger) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	in, err := openInput(opts.file)
	if err != nil {
		return err
	}
	defer in.Close()

	var est *quotation.Estimate
	if opts.apiURL != "" {
		logger.WithField("api_url", opts.apiURL).Info("Requesting estimate from API")
		client := &http.Client{Timeout: opts.timeout}
		est, err = estimateRemote(client, opts.apiURL, opts.token, in)
	} else {
		policy := costs.TollsExcluded
		if opts.tolls {
			policy = costs.TollsWhenRequested
		}
		var trip *tripFile
		if trip, err = loadTrip(in); err == nil {
			est, err = estimateLocal(trip, policy)
		}
	}
	if err != nil {
		return err
	}

	logger.WithFields(log.Fields{
		"vehicle": est.VehicleName,
		"total":   est.Costs.Total,
	}).Info("Estimate ready")

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}
	return printBreakdown(stdout, est)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trip file: %w", err)
	}
	return f, nil
}

func loadTrip(r io.Reader) (*tripFile, error) {
	var trip tripFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&trip); err != nil {
		return nil, fmt.Errorf("failed to decode trip file: %w", err)
	}

	trip.Vehicle.Normalize()
	if err := trip.Vehicle.Validate(); err != nil {
		return nil, err
	}
	if trip.Parameters == nil {
		trip.Parameters = models.DefaultSystemParameters("local", time.Now().Year())
	}
	if err := trip.Parameters.Validate(); err != nil {
		return nil, err
	}
	return &trip, nil
}

func estimateLocal(trip *tripFile, policy costs.TollPolicy) (*quotation.Estimate, error) {
	calc := costs.NewCalculator(costs.WithTollPolicy(policy))
	return quotation.Price(calc, &trip.Vehicle, trip.Parameters, trip.Route, trip.Flags, trip.ExtraMileage)
}

func authorizedPost(client *http.Client, url, token, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(req)
}

// envelope mirrors the API's response body.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    *quotation.Estimate `json:"data"`
	Error   string              `json:"error"`
	Field   string              `json:"field"`
	Stage   string              `json:"stage"`
}

func estimateRemote(client *http.Client, apiURL, token string, in io.Reader) (*quotation.Estimate, error) {
	var req models.QuoteRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode quote request: %w", err)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quote request: %w", err)
	}

	url := strings.TrimRight(apiURL, "/") + "/api/quotations/estimate"
	resp, err := authorizedPost(client, url, token, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to request estimate: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		switch {
		case env.Field != "":
			msg = fmt.Sprintf("%s (field %s)", msg, env.Field)
		case env.Stage != "":
			msg = fmt.Sprintf("%s (stage %s)", msg, env.Stage)
		}
		return nil, fmt.Errorf("estimate failed with status %d: %s", resp.StatusCode, msg)
	}
	if env.Data == nil {
		return nil, errors.New("estimate response has no data")
	}
	return env.Data, nil
}

func included(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func printBreakdown(w io.Writer, est *quotation.Estimate) error {
	c := est.Costs
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Vehicle\t%s\n", est.VehicleName)
	fmt.Fprintf(tw, "Route\t%s -> %s\n", est.Route.Origin, est.Route.Destination)
	fmt.Fprintf(tw, "Distance\t%.2f %s\n", c.Distance, c.DistanceUnit)
	fmt.Fprintf(tw, "Duration\t%.0f min\n", c.DurationMin)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Component\tAmount\tIncluded")
	fmt.Fprintf(tw, "Fuel\t%.2f\t%s\n", c.Fuel.Cost, included(c.Included.Fuel))
	fmt.Fprintf(tw, "Refueling stops\t%d\t\n", c.Refueling.Stops)
	fmt.Fprintf(tw, "Driver (%d days)\t%.2f\t%s\n", c.Driver.Days, c.Driver.Total, included(c.Included.Driver))
	fmt.Fprintf(tw, "Vehicle (%d days)\t%.2f\t%s\n", c.Vehicle.Days, c.Vehicle.Total, included(c.Included.Vehicle))
	fmt.Fprintf(tw, "Tolls\t%.2f\t%s\n", c.Tolls.Total, included(c.Included.Tolls))
	fmt.Fprintf(tw, "Total\t%.2f\t\n", c.Total)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Markup\tPrice HNL\tPrice USD\t")
	for _, o := range est.Options {
		mark := ""
		if o.Recommended {
			mark = "recommended"
		}
		fmt.Fprintf(tw, "%.0f%%\t%.2f\t%.2f\t%s\n", o.Markup, o.SalePriceHNL, o.SalePriceUSD, mark)
	}
	return tw.Flush()
}
