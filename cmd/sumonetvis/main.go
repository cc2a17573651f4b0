package main

import (
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	sumonetvis "github.com/patmalcolm91/SumoNetVis"
)

type cliOptions struct {
	netFile         string
	additionalsFile string
	outFile         string
	markingStyle    string
	busStopStyle    string
	stripeScale     float64
	noStopLines     bool
	terrainMargin   float64
	laneHeight      float64
	format          string
	verbose         bool
}

func main() {
	options := &cliOptions{}

	root := &cobra.Command{
		Use:          "sumonetvis",
		Short:        "sumonetvis converts SUMO networks to meshes and drawable shapes",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if options.verbose {
				charmlog.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVarP(&options.netFile, "net", "n", "", "SUMO network file (*.net.xml)")
	root.PersistentFlags().StringVarP(&options.additionalsFile, "additionals", "a", "", "SUMO additionals file")
	root.PersistentFlags().StringVarP(&options.outFile, "out", "o", "", "output file, stdout when empty")
	root.PersistentFlags().StringVar(&options.markingStyle, "marking-style", "EUR", "lane marking style (EUR or USA)")
	root.PersistentFlags().StringVar(&options.busStopStyle, "bus-stop-style", "SUMO", "bus stop style (SUMO, GER, UK or USA)")
	root.PersistentFlags().Float64Var(&options.stripeScale, "stripe-width-scale", 1.0, "scale factor for marking stripe widths")
	root.PersistentFlags().BoolVar(&options.noStopLines, "no-stop-lines", false, "disable stop line synthesis")
	if err := root.MarkPersistentFlagRequired("net"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	root.AddCommand(newObjCmd(options))
	root.AddCommand(newShapesCmd(options))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func (options *cliOptions) style() (*sumonetvis.Style, error) {
	markingStyle, err := sumonetvis.MarkingStyleFromString(options.markingStyle)
	if err != nil {
		return nil, err
	}
	busStopStyle, err := sumonetvis.BusStopStyleFromString(options.busStopStyle)
	if err != nil {
		return nil, err
	}
	return sumonetvis.NewStyle(
		sumonetvis.WithMarkingStyle(markingStyle),
		sumonetvis.WithBusStopStyle(busStopStyle),
		sumonetvis.WithStripeWidthScale(options.stripeScale),
		sumonetvis.WithStopLines(!options.noStopLines),
	), nil
}

func (options *cliOptions) write(data []byte) error {
	if options.outFile == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(options.outFile, data, 0644)
}

func newObjCmd(options *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obj",
		Short: "Generate a Wavefront OBJ mesh of the network",
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := options.style()
			if err != nil {
				return err
			}
			net, err := sumonetvis.LoadNetwork(options.netFile)
			if err != nil {
				return err
			}
			text := sumonetvis.GenerateNetworkObjText(net, sumonetvis.NetworkObjOptions{
				Style:         style,
				TerrainMargin: options.terrainMargin,
				LaneHeight:    options.laneHeight,
			})
			if options.additionalsFile != "" {
				additionals, err := sumonetvis.LoadAdditionals(options.additionalsFile, net)
				if err != nil {
					return err
				}
				text += sumonetvis.GenerateAdditionalsObjText(additionals, style, sumonetvis.ParamOverrides{})
			}
			return options.write([]byte(text))
		},
	}
	cmd.Flags().Float64Var(&options.terrainMargin, "terrain-margin", 0, "add a terrain plane extending this far beyond the network bounds")
	cmd.Flags().Float64Var(&options.laneHeight, "lane-height", 0, "extrusion height of lane prisms")
	cmd.Flags().BoolVarP(&options.verbose, "verbose", "v", false, "enable verbose logging")
	return cmd
}

func newShapesCmd(options *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "Export network shapes as GeoJSON or as WKT/GeoJSON text records",
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := options.style()
			if err != nil {
				return err
			}
			net, err := sumonetvis.LoadNetwork(options.netFile)
			if err != nil {
				return err
			}
			var additionals *sumonetvis.Additionals
			if options.additionalsFile != "" {
				if additionals, err = sumonetvis.LoadAdditionals(options.additionalsFile, net); err != nil {
					return err
				}
			}

			if options.format == "geojson" {
				collection := sumonetvis.NetworkShapesGeoJSON(net, style)
				if additionals != nil {
					extra := sumonetvis.AdditionalsShapesGeoJSON(additionals, style)
					collection.Features = append(collection.Features, extra.Features...)
				}
				data, err := collection.MarshalJSON()
				if err != nil {
					return err
				}
				return options.write(data)
			}

			geomFormat := options.format
			if geomFormat == "geojson-records" {
				geomFormat = "geojson"
			}
			text, err := sumonetvis.NetworkShapesText(net, style, geomFormat)
			if err != nil {
				return err
			}
			if additionals != nil {
				extra, err := sumonetvis.AdditionalsShapesText(additionals, style, geomFormat)
				if err != nil {
					return err
				}
				text += extra
			}
			return options.write([]byte(text))
		},
	}
	cmd.Flags().StringVar(&options.format, "format", "geojson", "output format (geojson, wkt or geojson-records)")
	cmd.Flags().BoolVarP(&options.verbose, "verbose", "v", false, "enable verbose logging")
	return cmd
}
