package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/wheelpath/engine/internal/anchorfile"
	"github.com/wheelpath/engine/internal/api"
	"github.com/wheelpath/engine/internal/config"
	"github.com/wheelpath/engine/internal/geo"
	"github.com/wheelpath/engine/internal/path"
	"github.com/wheelpath/engine/internal/scene"
	"github.com/wheelpath/engine/internal/scoring"
	"github.com/wheelpath/engine/internal/storage"
	filestorage "github.com/wheelpath/engine/internal/storage/file"
	"github.com/wheelpath/engine/internal/watch"
	"github.com/wheelpath/engine/pkg/core"
)

// command output, swapped in tests
var out io.Writer = os.Stdout

var errNoPath = errors.New("scenario has no goals to build a path from")

func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newScene() *scene.Scene {
	return scene.New(config.GetSceneConfig(),
		scene.WithLogger(Logger),
		scene.WithMeter(OTelProvider.Meter("wheelpath/scene")),
	)
}

// loadScene rebuilds a saved scenario headlessly: anchors are placed relative
// to a start reference at the origin instead of being resolved in the cloud.
func loadScene(ctx context.Context, backend storage.Backend, name string) (*scene.Scene, error) {
	recs, err := backend.LoadScenario(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load scenario %q: %w", name, err)
	}
	sc := newScene()
	sc.Load(ctx, recs, nil)
	if err := sc.Settle(ctx); err != nil {
		return nil, err
	}
	return sc, nil
}

func parseArgs(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != want {
		fs.Usage()
		return nil, fmt.Errorf("expected %d argument(s), got %d", want, fs.NArg())
	}
	return fs.Args(), nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type curveOutput struct {
	Scenario   string            `json:"scenario"`
	Segments   int               `json:"segments"`
	PerSegment int               `json:"perSegment"`
	Lengths    []float64         `json:"segmentLengths"`
	Length     float64           `json:"length"`
	Points     []core.Position3D `json:"points"`
	Checks     []routeCheck      `json:"checks,omitempty"`
}

// routeCheck is the ground distance of one queried point to the centre line.
type routeCheck struct {
	Point    core.Position3D `json:"point"`
	Distance float64         `json:"distance"`
	OffRoute bool            `json:"offRoute"`
}

func runCurve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("curve", flag.ContinueOnError)
	road := fs.Bool("road", false, "print the road band instead of the centre line")
	at := fs.String("at", "", `check one point, "x,z" or "x,y,z"`)
	trail := fs.String("trail", "", `check a trail, "[[x,y,z],...]"`)
	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}

	var points []core.Position3D
	if *at != "" {
		p, err := geo.Position3DFromString(*at)
		if err != nil {
			return fmt.Errorf("-at %q: %w", *at, err)
		}
		points = append(points, p)
	}
	if *trail != "" {
		t, err := geo.ParseTrail(*trail)
		if err != nil {
			return err
		}
		points = append(points, t...)
	}

	backend, err := openStorage()
	if err != nil {
		return err
	}
	defer backend.Close()

	sc, err := loadScene(ctx, backend, rest[0])
	if err != nil {
		return err
	}
	o := describeCurve(rest[0], sc.Curve(), *road)
	o.Checks = checkRoute(sc.Curve(), points, config.GetScoringConfig().OffRouteDistance)
	return writeJSON(o)
}

func checkRoute(c *path.Curve, points []core.Position3D, limit float64) []routeCheck {
	if len(points) == 0 {
		return nil
	}
	line := geo.GroundLine(c.Samples)
	out := make([]routeCheck, 0, len(points))
	for _, p := range points {
		d, ok := geo.DistanceToLine(line, p)
		out = append(out, routeCheck{Point: p, Distance: d, OffRoute: ok && d > limit})
	}
	return out
}

func describeCurve(name string, c *path.Curve, road bool) curveOutput {
	o := curveOutput{
		Scenario:   name,
		Segments:   c.Segments(),
		PerSegment: c.PerSegment,
		Lengths:    make([]float64, c.Segments()),
		Points:     c.Samples,
	}
	if road {
		o.Points = c.Road
	}
	for j := range o.Lengths {
		o.Lengths[j] = c.SegmentLength(j)
	}
	o.Length = geo.PathLength(c.Samples)
	return o
}

func runGeoJSON(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("geojson", flag.ContinueOnError)
	output := fs.String("o", "", "write to file instead of stdout")
	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}

	backend, err := openStorage()
	if err != nil {
		return err
	}
	defer backend.Close()

	sc, err := loadScene(ctx, backend, rest[0])
	if err != nil {
		return err
	}
	data, err := config.GetGeoOrigin().FeatureCollection(sc.Curve().Samples, sc.Objects())
	if err != nil {
		return fmt.Errorf("build feature collection: %w", err)
	}
	if *output == "" {
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		return err
	}
	Logger.Info("Wrote GeoJSON", "scenario", rest[0], "path", *output)
	return nil
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	name := fs.String("name", "", "scenario name, defaults to the file name")
	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}

	recs, err := anchorfile.ReadFile(rest[0])
	if err != nil {
		return err
	}
	scenario := *name
	if scenario == "" {
		scenario = strings.TrimSuffix(filepath.Base(rest[0]), filepath.Ext(rest[0]))
	}

	backend, err := openStorage()
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.SaveScenario(ctx, scenario, recs); err != nil {
		return fmt.Errorf("save scenario %q: %w", scenario, err)
	}
	_, err = fmt.Fprintf(out, "imported %d anchor(s) as %q\n", len(recs), scenario)
	return err
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	backend, err := openStorage()
	if err != nil {
		return err
	}
	defer backend.Close()

	names, err := backend.ListScenarios(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}

// runWatch rebuilds the curve of every scenario file written to the file
// storage directory until interrupted.
func runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	debounce := fs.Duration("debounce", watch.DefaultDebounce, "ignore repeat writes within this window")
	if _, err := parseArgs(fs, args, 0); err != nil {
		return err
	}

	dir := config.GetStorageConfig().File.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	w, err := watch.New(dir, *debounce)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	defer w.Close()
	Logger.Info("Watching scenarios", "dir", dir)

	sc := newScene()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			Logger.Warn("Watcher error", "error", err)
		case ch, ok := <-w.Events:
			if !ok {
				return nil
			}
			rebuild(ctx, sc, ch)
		}
	}
}

func rebuild(ctx context.Context, sc *scene.Scene, ch watch.Change) {
	if ch.Removed {
		Logger.Info("Scenario removed", "scenario", ch.Scenario)
		return
	}
	recs, err := anchorfile.ReadFile(ch.Path)
	if err != nil {
		// usually a write still in progress; the next event retries
		Logger.Warn("Skipping unreadable scenario", "scenario", ch.Scenario, "error", err)
		return
	}
	sc.Load(ctx, recs, nil)
	if err := sc.Settle(ctx); err != nil {
		return
	}
	c := sc.Curve()
	fmt.Fprintf(out, "%s: %d anchor(s), %d object(s), %d segment(s), length %.2f m\n",
		ch.Scenario, len(sc.Anchors()), len(sc.Objects()), c.Segments(), geo.PathLength(c.Samples))
}

func runReplay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	mode := fs.String("mode", string(core.ModeStatic), "play mode: static or moving")
	velocity := fs.Int("velocity", 1, "walker sub-steps per frame")
	reach := fs.Float64("reach", 0.1, "ground distance at which an object is touched")
	maxFrames := fs.Int("max-frames", 1_000_000, "stop after this many frames")
	upload := fs.Bool("upload", false, "upload the exported session to the spectator server (file storage only)")
	tag := fs.String("tag", "", "tag attached to the uploaded session")
	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	opts := replayOptions{
		Scenario:  rest[0],
		Mode:      core.PlayMode(*mode),
		Velocity:  *velocity,
		Reach:     *reach,
		MaxFrames: *maxFrames,
		Stretch:   config.WalkerStretch(),
		Scoring:   config.GetScoringConfig(),
	}
	if opts.Mode != core.ModeStatic && opts.Mode != core.ModeMoving {
		return fmt.Errorf("unknown mode %q", *mode)
	}

	backend, err := openStorage()
	if err != nil {
		return err
	}
	defer backend.Close()

	sc, err := loadScene(ctx, backend, opts.Scenario)
	if err != nil {
		return err
	}

	sinks := fanout{backend}
	if tele := openTelemetry(ctx); tele != nil {
		defer tele.Close()
		tele.SetScenario(opts.Scenario)
		sinks = append(sinks, tele)
	}

	res, err := replay(ctx, opts, sc, backend, sinks)
	if err != nil {
		return err
	}
	if *upload {
		if err := uploadSession(ctx, backend, res.session, *tag); err != nil {
			return err
		}
	}
	return writeJSON(res)
}

// uploadSession sends the file backend's last export to the spectator server.
func uploadSession(ctx context.Context, backend storage.Backend, s core.Session, tag string) error {
	fb, ok := backend.(*filestorage.Backend)
	if !ok || fb.GetExportedFilePath() == "" {
		return fmt.Errorf("upload: %w: no exported session file", storage.ErrUnsupported)
	}
	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Healthcheck(ctx); err != nil {
		return fmt.Errorf("spectator server unavailable: %w", err)
	}
	if err := client.Upload(ctx, fb.GetExportedFilePath(), api.UploadFromSession(s, tag)); err != nil {
		return err
	}
	Logger.Info("Uploaded session", "session", s.ID, "path", fb.GetExportedFilePath())
	return nil
}

type replayOptions struct {
	Scenario  string
	Mode      core.PlayMode
	Velocity  int
	Reach     float64
	MaxFrames int
	Stretch   float64
	Scoring   scoring.Config
}

type replayResult struct {
	SessionID   string        `json:"sessionId"`
	Scenario    string        `json:"scenario"`
	Mode        core.PlayMode `json:"mode"`
	Score       int           `json:"score"`
	Checkpoints int           `json:"checkpoints"`
	Goals       int           `json:"goals"`
	Clock       string        `json:"clock"`
	Frames      int           `json:"frames"`
	OffRoute    int           `json:"offRouteFrames"`
	Finished    bool          `json:"finished"`

	session core.Session
}

// fanout forwards game events and poses to every sink that takes them.
type fanout []scoring.EventSink

func (f fanout) RecordGameEvent(ctx context.Context, e core.GameEvent) error {
	var errs []error
	for _, s := range f {
		if err := s.RecordGameEvent(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) RecordPose(ctx context.Context, sessionID string, sample core.PoseSample) error {
	var errs []error
	for _, s := range f {
		if pr, ok := s.(storage.PoseRecorder); ok {
			if err := pr.RecordPose(ctx, sessionID, sample); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// replay plays a scenario without a headset: the walker drives along the
// curve and the player either rides it (static) or trails it by one frame
// (moving). Goals and dodge objects are touched when the player comes within
// reach on the ground.
func replay(ctx context.Context, opts replayOptions, sc *scene.Scene, backend storage.Backend, sink fanout) (replayResult, error) {
	curve := sc.Curve()
	if curve.Empty() {
		return replayResult{}, fmt.Errorf("%w: %s", errNoPath, opts.Scenario)
	}
	if opts.Velocity < 1 {
		opts.Velocity = 1
	}
	if opts.Stretch <= 0 {
		opts.Stretch = 1
	}

	var visible []*core.PlacedObject
	for _, o := range sc.Objects() {
		if o.Kind.VisibleIn(opts.Mode) {
			visible = append(visible, o)
		}
	}

	sess := scoring.NewSession(opts.Scoring, opts.Scenario, opts.Mode, curve, sc.Goals(), sink, Logger)
	info := sess.Info()
	if err := backend.StartSession(ctx, &info); err != nil {
		return replayResult{}, fmt.Errorf("start session: %w", err)
	}
	log := Logger.With("session", info.ID.String(), "scenario", opts.Scenario)
	log.Info("Replay started", "mode", opts.Mode, "objects", len(visible), "goals", len(sc.Goals()))
	sess.Announce(ctx, visible)

	walker := path.NewWalker(curve, opts.Stretch)
	dodged := make(map[uuid.UUID]bool)
	res := replayResult{
		SessionID: info.ID.String(),
		Scenario:  opts.Scenario,
		Mode:      opts.Mode,
		Goals:     len(sc.Goals()),
	}

	for res.Frames < opts.MaxFrames && !sess.Finished() && ctx.Err() == nil {
		prev := walker.Pose()
		moving := walker.Advance(opts.Velocity)
		player := moving
		if opts.Mode == core.ModeMoving {
			player = prev
		}
		res.Frames++

		sess.RecordPose(player, &moving)
		sample := core.PoseSample{Time: time.Now(), Pose: player}
		if err := sink.RecordPose(ctx, info.ID.String(), sample); err != nil {
			log.Debug("Failed to record pose", "error", err)
		}
		if _, off := sess.OffRoute(player.Position); off {
			res.OffRoute++
		}

		for _, o := range visible {
			if o.Kind != core.KindGoal && o.Kind != core.KindDodge {
				continue
			}
			if dodged[o.ID] || player.Position.PlanarDistance(o.Pose.Position) > opts.Reach {
				continue
			}
			if o.Kind == core.KindDodge {
				dodged[o.ID] = true
			}
			sess.Collide(ctx, o)
		}

		if walker.Done() && player == moving {
			break
		}
	}

	final := sess.Info()
	final.EndTime = time.Now()
	if err := backend.EndSession(ctx, &final); err != nil {
		return replayResult{}, fmt.Errorf("end session: %w", err)
	}

	res.Score = final.Final.Score
	res.Checkpoints = final.Final.NumCheckpoints
	res.Clock = final.Final.Clock()
	res.Finished = sess.Finished()
	res.session = final
	log.Info("Replay finished", "score", res.Score, "checkpoints", res.Checkpoints, "frames", res.Frames)
	return res, nil
}
