package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/housekeeper/internal/navstate"
)

// demoteJSON is the JSON output structure for the demote command.
type demoteJSON struct {
	Demoted      []string `json:"demoted"`
	Count        int      `json:"count"`
	FilesRemoved int      `json:"files_removed"`
}

// Execute implements the go-flags Commander interface for DemoteCommand.
func (c *DemoteCommand) Execute(args []string) error {
	env, err := openEnv(c.globals)
	if err != nil {
		return err
	}
	defer env.Close()
	defer env.flushMetrics()

	return c.executeWithEnv(context.Background(), env)
}

// executeWithEnv demotes against a provided environment (for testing).
func (c *DemoteCommand) executeWithEnv(ctx context.Context, env *cmdEnv) error {
	sess := env.store.NewSession(env.inUse)

	urls, err := env.housekeeper().DemoteDiskCache(ctx, sess, navstate.NewController(sess))
	if err != nil {
		return err
	}
	removed := env.removeFiles(urls, c.KeepFiles)

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(demoteJSON{Demoted: urls, Count: len(urls), FilesRemoved: removed})
	}

	for _, u := range urls {
		fmt.Println(u)
	}
	fmt.Printf("Demoted %s articles (%s payload directories removed).\n",
		formatNumber(int64(len(urls))), formatNumber(int64(removed)))
	return nil
}
