// Copyright © 2022 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command abitool is a small CLI surface over pkg/abi, used to exercise the type parser,
// standard/packed encoder, and selector derivation from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaleido-abi/abicodec/pkg/abi"
)

var cfg = viper.New()

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "abitool",
		Short: "Inspect and exercise Ethereum contract ABI type descriptors",
	}
	root.PersistentFlags().Bool("packed", false, "use the non-standard packed encoding")
	_ = cfg.BindPFlag("packed", root.PersistentFlags().Lookup("packed"))

	root.AddCommand(selectorCmd())
	root.AddCommand(encodeCmd())
	root.AddCommand(decodeCmd())
	return root
}

func selectorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selector <name> <descriptor>",
		Short: "Print the 4-byte selector for name(descriptor)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			tc, err := abi.ParseTypeString(ctx, args[1])
			if err != nil {
				return err
			}
			fn, err := abi.NewFunction(ctx, abi.VariantOrdinary, args[0], tc, nil, "nonpayable")
			if err != nil {
				return err
			}
			sel, err := fn.Selector(ctx, abi.DefaultDigestFactory)
			if err != nil {
				return err
			}
			fmt.Printf("%s => 0x%x\n", fn.Signature(), sel)
			return nil
		},
	}
}

func encodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <descriptor> <json-value>",
		Short: "Encode a JSON value against a type descriptor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			tc, err := abi.ParseTypeString(ctx, args[0])
			if err != nil {
				return err
			}
			var raw interface{}
			dec := json.NewDecoder(stringsReader(args[1]))
			dec.UseNumber()
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			cv, err := abi.ParseJSONValue(ctx, tc, "", raw)
			if err != nil {
				return err
			}
			var out []byte
			if cfg.GetBool("packed") {
				out, err = abi.EncodePacked(ctx, tc, cv)
			} else {
				out, err = abi.EncodeABIData(ctx, tc, cv)
			}
			if err != nil {
				return err
			}
			fmt.Printf("0x%x\n", out)
			return nil
		},
	}
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <descriptor> <hex-data>",
		Short: "Decode hex data against a type descriptor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			tc, err := abi.ParseTypeString(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := decodeHexArg(args[1])
			if err != nil {
				return err
			}
			var cv *abi.ComponentValue
			if cfg.GetBool("packed") {
				cv, err = abi.DecodePacked(ctx, tc, data)
			} else {
				cv, err = abi.DecodeABIData(ctx, tc, data)
			}
			if err != nil {
				return err
			}
			out, err := abi.SerializeToJSON(ctx, cv)
			if err != nil {
				return err
			}
			b, err := json.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		},
	}
}
