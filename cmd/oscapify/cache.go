// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/tmsincomb/oscapify/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or manage the DOI lookup cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size, hit rate, and location",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached lookup",
	RunE:  runCacheClear,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Sweep expired entries from the cache",
	RunE:  runCacheCleanup,
}

func init() {
	cacheCmd.PersistentFlags().String("cache-dir", "", "cache directory (default: user cache dir)")
	cacheClearCmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd, cacheCleanupCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	dir, _ := cmd.Flags().GetString("cache-dir")
	if dir == "" {
		dir = viper.GetString("cache-dir")
	}
	if dir == "" {
		var err error
		dir, err = cache.DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	return cache.Open(dir)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := openCache(cmd)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c.Stats())
	if err != nil {
		return fmt.Errorf("marshaling cache stats: %w", err)
	}
	fmt.Println("Cache statistics:")
	os.Stdout.Write(data)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Print("Clear the DOI lookup cache? [y/N] ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	c, err := openCache(cmd)
	if err != nil {
		return err
	}
	if err := c.Clear(); err != nil {
		return err
	}
	fmt.Println("Cache cleared.")
	return nil
}

func runCacheCleanup(cmd *cobra.Command, args []string) error {
	c, err := openCache(cmd)
	if err != nil {
		return err
	}
	removed, err := c.CleanupExpired()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d expired entries.\n", removed)
	return nil
}
