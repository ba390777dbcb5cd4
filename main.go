package main

import (
	"fmt"
	"os"

	"github.com/df07/go-mis-pathtracer/cmd"
	"github.com/df07/go-mis-pathtracer/pkg/integrator"
	"github.com/df07/go-mis-pathtracer/pkg/renderer"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	defaults := renderer.DefaultConfig()

	app := cli.NewApp()
	app.Name = "mis-pathtracer"
	app.Usage = "render scenes with a multiple importance sampling path tracer"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, notice, warning or error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "render",
			Usage:  "render a built-in scene to an image",
			Action: cmd.RenderFrame,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Value: "cornell",
					Usage: "built-in scene to render, see the scenes command",
				},
				cli.IntFlag{
					Name:  "width",
					Value: defaults.Width,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: defaults.Height,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "iterations, spp",
					Value: 16,
					Usage: "number of progressive iterations, one sample per pixel each",
				},
				cli.IntFlag{
					Name:  "tile-size",
					Value: defaults.TileSize,
					Usage: "tile edge length in pixels",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: defaults.Workers,
					Usage: "number of render workers (0 uses all CPUs)",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: int64(defaults.Seed),
					Usage: "seed for the per-pixel random streams",
				},
				cli.StringFlag{
					Name:  "integrator",
					Value: "pt",
					Usage: "integrator to use (pt or eyelight)",
				},
				cli.IntFlag{
					Name:  "max-path-length",
					Value: integrator.MaxPathLength,
					Usage: "maximum number of shaded vertices per path",
				},
				cli.StringFlag{
					Name:  "heuristic",
					Value: "power",
					Usage: "MIS heuristic (power, balance or max)",
				},
				cli.StringFlag{
					Name:  "strategy",
					Value: "mis",
					Usage: "light transport strategy (mis, light or brdf)",
				},
				cli.BoolFlag{
					Name:  "no-rr",
					Usage: "disable russian roulette",
				},
				cli.StringFlag{
					Name:  "mesh",
					Usage: "PLY mesh to add at the center of the scene",
				},
				cli.Float64Flag{
					Name:  "mesh-size",
					Value: 1.5,
					Usage: "largest side of the added mesh",
				},
				cli.StringFlag{
					Name:  "mesh-material",
					Value: "white",
					Usage: "material preset for the added mesh",
				},
				cli.BoolFlag{
					Name:  "bvh",
					Usage: "build a bounding volume hierarchy over the scene surfaces",
				},
				cli.Float64Flag{
					Name:  "exposure",
					Value: defaults.Exposure,
					Usage: "exposure multiplier applied before gamma",
				},
				cli.StringFlag{
					Name:  "tonemap",
					Value: "gamma",
					Usage: "output mapping (gamma or log)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output image (png, bmp or tiff); defaults to output/<scene>/render_<timestamp>.png",
				},
			},
		},
		{
			Name:   "scenes",
			Usage:  "list the built-in scenes",
			Action: cmd.ListScenes,
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
