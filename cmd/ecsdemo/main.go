// Command ecsdemo drives a small world and scheduler at a fixed rate
// using time.Ticker, the same delta-time bookkeeping shape as the
// teacher's game loop without the rendering binding it came with.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/opd-ai/ecsframe/pkg/ecs"
	"github.com/opd-ai/ecsframe/pkg/ecslog"
	"github.com/opd-ai/ecsframe/pkg/scheduler"
)

type Position struct{ X, Y float64 }
type Velocity struct{ VX, VY float64 }

func newMovementSystem() *ecs.System {
	return ecs.NewSystem(func(ctx *ecs.SystemContext) error {
		for _, row := range ctx.Queries["moving"].WithComponents() {
			pos := row.Tuple[0].(*Position)
			vel := row.Tuple[1].(*Velocity)
			pos.X += vel.VX
			pos.Y += vel.VY
		}
		return nil
	}, ecs.WithQuery("moving", ecs.Present[Position](), ecs.Present[Velocity]()), ecs.WithLabel("movement"))
}

func main() {
	logger := ecslog.DemoLogger("ecsdemo")

	world := ecs.NewWorld(ecs.WithName("ecsdemo"), ecs.WithLogger(logger))
	for i := 0; i < 3; i++ {
		e := world.Spawn()
		ecs.Add(e.Container, Position{X: float64(i), Y: 0})
		ecs.Add(e.Container, Velocity{VX: 1, VY: 0.5})
	}

	groups := scheduler.NewGroups()
	sim := groups.Get("simulation")
	sim.Add(newMovementSystem())

	pm := scheduler.NewPluginManager(groups, scheduler.WithPluginLogger(logger))
	pm.Register(func(onInit scheduler.OnInit, g *scheduler.Groups) {
		onInit(func(context.Context) (scheduler.CleanupFunc, error) {
			logger.Info("movement plugin initialized")
			return func(context.Context) error {
				logger.Info("movement plugin cleaned up")
				return nil
			}, nil
		}, scheduler.HookOptions{Name: "movement"})
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := pm.Init(ctx); err != nil {
		logger.WithError(err).Fatal("plugin init failed")
	}
	defer pm.Stop(ctx)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sim.Tick(world); err != nil {
				logger.WithError(err).Error("tick failed")
				return
			}
			frames++
			if frames >= 5 {
				for _, e := range world.Entities() {
					p, _ := ecs.Get[Position](e.Container)
					fmt.Printf("entity %s: position %+v\n", e.ID(), *p)
				}
				return
			}
		}
	}
}
