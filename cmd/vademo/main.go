// Command vademo runs a render sequence end to end and saves the resulting
// frame as a PNG. With the default software driver it needs no hardware;
// pass -driver drm on a machine with a render node to exercise native libva.
package main

import (
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"

	libva "github.com/rosetta-jpn/cros-libva"
	_ "github.com/rosetta-jpn/cros-libva/drivers/drm"
)

func main() {
	var (
		driver  = flag.String("driver", libva.DriverSoftware, "driver name (empty = auto-select)")
		width   = flag.Uint("width", 320, "frame width")
		height  = flag.Uint("height", 240, "frame height")
		output  = flag.String("output", "frame.png", "output file")
		verbose = flag.Bool("v", false, "log library activity")
	)
	flag.Parse()

	if *verbose {
		libva.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	var opts []libva.DisplayOption
	if *driver != "" {
		opts = append(opts, libva.WithDriverName(*driver))
	}
	dpy, err := libva.Open(opts...)
	if err != nil {
		log.Fatalf("Failed to open display: %v", err)
	}
	defer dpy.Close()

	w, h := uint32(*width), uint32(*height)

	cfg, err := dpy.CreateConfig(libva.ProfileNone, libva.EntrypointVideoProc)
	if err != nil {
		log.Fatalf("Failed to create config: %v", err)
	}
	defer cfg.Destroy()

	surfaces, err := dpy.CreateSurfaces(libva.RTFormatRGB32, w, h, 1)
	if err != nil {
		log.Fatalf("Failed to create surface: %v", err)
	}
	surface := surfaces[0]
	defer surface.Destroy()

	ctx, err := dpy.CreateContext(cfg, w, h, surfaces)
	if err != nil {
		log.Fatalf("Failed to create context: %v", err)
	}
	defer ctx.Destroy()

	buf, err := ctx.CreateBuffer(libva.BufferTypeSliceData, gradientRGBA(w, h))
	if err != nil {
		log.Fatalf("Failed to create buffer: %v", err)
	}

	pic := libva.NewPicture(0, ctx, surface)
	if err := pic.AddBuffer(buf); err != nil {
		log.Fatalf("Failed to attach buffer: %v", err)
	}
	begun, err := pic.Begin()
	if err != nil {
		log.Fatalf("Begin failed: %v", err)
	}
	rendering, err := begun.Render()
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}
	ended, err := rendering.End()
	if err != nil {
		log.Fatalf("End failed: %v", err)
	}
	synced, err := ended.Sync()
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}
	defer synced.Close()

	res := libva.Resolution{Width: w, Height: h}
	img, err := synced.DeriveImage(res)
	if err != nil {
		// Not every driver can derive; fall back to an image copy.
		img, err = synced.CreateImage(libva.PixelFormatRGBA, res, res)
		if err != nil {
			log.Fatalf("Failed to read back frame: %v", err)
		}
	}
	defer img.Destroy()

	frame, err := img.RGBA()
	if err != nil {
		log.Fatalf("Failed to convert frame: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		log.Fatalf("Failed to encode PNG: %v", err)
	}

	log.Printf("Frame saved to %s (%dx%d)\n", *output, w, h)
}

// gradientRGBA fills a frame-sized payload with a diagonal color ramp so
// the output is visibly non-uniform.
func gradientRGBA(width, height uint32) []byte {
	data := make([]byte, 4*width*height)
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			i := 4 * (y*width + x)
			data[i+0] = byte(255 * x / width)
			data[i+1] = byte(255 * y / height)
			data[i+2] = byte(255 * (x + y) / (width + height))
			data[i+3] = 0xff
		}
	}
	return data
}
