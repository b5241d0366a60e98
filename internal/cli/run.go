package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/housekeeper/internal/navstate"
)

// runJSON is the JSON output structure for the run command.
type runJSON struct {
	Evicted      []string `json:"evicted"`
	Count        int      `json:"count"`
	FilesRemoved int      `json:"files_removed"`
}

// Execute implements the go-flags Commander interface for RunCommand.
func (c *RunCommand) Execute(args []string) error {
	env, err := openEnv(c.globals)
	if err != nil {
		return err
	}
	defer env.Close()
	defer env.flushMetrics()

	return c.executeWithEnv(context.Background(), env)
}

// executeWithEnv runs a pass against a provided environment (for testing).
func (c *RunCommand) executeWithEnv(ctx context.Context, env *cmdEnv) error {
	sess := env.store.NewSession(env.inUse)

	urls, runErr := env.housekeeper().Run(ctx, sess, navstate.NewController(sess))
	removed := env.removeFiles(urls, c.KeepFiles)

	if len(urls) > 0 || runErr == nil {
		if err := c.print(urls, removed); err != nil {
			return err
		}
	}
	return runErr
}

func (c *RunCommand) print(urls []string, removed int) error {
	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runJSON{Evicted: urls, Count: len(urls), FilesRemoved: removed})
	}

	for _, u := range urls {
		fmt.Println(u)
	}
	fmt.Printf("Evicted %s articles (%s payload directories removed).\n",
		formatNumber(int64(len(urls))), formatNumber(int64(removed)))
	return nil
}
