// Package main provides the Kaffe CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kaffe-ml/kaffe/c2pb"
	"github.com/kaffe-ml/kaffe/tensor"
)

const version = "v0.1.0-dev"

func main() {
	asText := pflag.Bool("text", false, "re-emit the decoded message in text format")
	pflag.Usage = usage
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "version":
		fmt.Printf("Kaffe %s\n", version)
	case "inspect":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: kaffe inspect [--text] <file>")
			os.Exit(2)
		}
		if err := inspect(args[1], *asText); err != nil {
			fmt.Fprintln(os.Stderr, "kaffe:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Kaffe - Caffe2 model-proto toolkit")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version              Show version")
	fmt.Println("  inspect [--text] <file>")
	fmt.Println("                       Identify and summarize a serialized model file")
}

// inspect speculative-decodes the file against the known model message
// classes, ordered from most to least specific, and prints a summary.
func inspect(path string, asText bool) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: inspecting a user-supplied path is the point.
	if err != nil {
		return err
	}

	summary, err := c2pb.DecodeAndDispatch(data, []c2pb.Candidate[string]{
		{New: func() c2pb.Message { return &c2pb.NetDef{} }, Handle: describe(asText, describeNet)},
		{New: func() c2pb.Message { return &c2pb.TensorProtos{} }, Handle: describe(asText, describeTensors)},
		{New: func() c2pb.Message { return &c2pb.BlobProto{} }, Handle: describe(asText, describeBlob)},
		{New: func() c2pb.Message { return &c2pb.TensorProto{} }, Handle: describe(asText, describeTensor)},
	})
	if err != nil {
		return err
	}
	fmt.Print(summary)
	return nil
}

// describe wraps a summarizer, optionally appending the text-format
// rendering of the decoded message.
func describe(asText bool, fn func(c2pb.Message) string) func(c2pb.Message) (string, error) {
	return func(msg c2pb.Message) (string, error) {
		var b strings.Builder
		b.WriteString(fn(msg))
		if asText {
			text, err := msg.MarshalText()
			if err != nil {
				return "", err
			}
			b.WriteString("\n")
			b.Write(text)
		}
		return b.String(), nil
	}
}

func describeNet(msg c2pb.Message) string {
	net := msg.(*c2pb.NetDef)
	var b strings.Builder
	fmt.Fprintf(&b, "NetDef %q: %d ops, %d external inputs, %d external outputs\n",
		net.Name, len(net.Ops), len(net.ExternalInputs), len(net.ExternalOutputs))
	for _, op := range net.Ops {
		fmt.Fprintf(&b, "  %-20s %v -> %v\n", op.Type, op.Inputs, op.Outputs)
	}
	return b.String()
}

func describeTensors(msg c2pb.Message) string {
	tensors := msg.(*c2pb.TensorProtos)
	var b strings.Builder
	fmt.Fprintf(&b, "TensorProtos: %d tensors\n", len(tensors.Protos))
	for i := range tensors.Protos {
		b.WriteString("  " + tensorLine(&tensors.Protos[i]))
	}
	return b.String()
}

func describeTensor(msg c2pb.Message) string {
	return tensorLine(msg.(*c2pb.TensorProto))
}

func tensorLine(t *c2pb.TensorProto) string {
	return fmt.Sprintf("TensorProto %q: %s %v\n", t.Name, c2pb.DataTypeName(t.DataType), t.Dims)
}

func describeBlob(msg c2pb.Message) string {
	blob := msg.(*c2pb.BlobProto)
	arr, err := tensor.FromBlobProto(blob)
	if err != nil {
		return fmt.Sprintf("BlobProto: %v\n", err)
	}
	return fmt.Sprintf("BlobProto: %s %v, %d elements\n", arr.DType(), arr.Dims(), arr.NumElements())
}
