package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/estebanpuyanas/FVT/pkg/object"
	"github.com/estebanpuyanas/FVT/pkg/repo"
)

func newInitCmd(e *env) *cobra.Command {
	var parent, hashName, codecName string

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create an empty repository in a new directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := object.ParseHashAlgorithm(hashName)
			if err != nil {
				return err
			}
			codec, err := object.ParseCodec(codecName)
			if err != nil {
				return err
			}
			if parent == "" {
				parent = e.dir
			}

			r, err := repo.Init(args[0], parent,
				repo.WithHashAlgorithm(alg),
				repo.WithCodec(codec),
				repo.WithLogger(e.log()),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty repository %s in %s\n",
				r.Name, filepath.Join(r.RootDir, repo.MetaDirName))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "path", "", "directory to create the repository in (default: current directory)")
	cmd.Flags().StringVar(&hashName, "hash", string(object.DefaultHashAlgorithm), "content hash: sha256, blake2b, blake3")
	cmd.Flags().StringVar(&codecName, "compression", object.DefaultCodec.String(), "object compression: zlib, zstd, lz4")
	return cmd
}
