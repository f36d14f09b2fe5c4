// Command redirects patches the kernel image so that selected Go runtime
// functions jump to kernel replacements. Functions opt in with a
// "//go:redirect-from <symbol>" directive in their doc comment.
package main

import (
	"bufio"
	"debug/elf"
	"encoding/binary"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const redirectDirective = "//go:redirect-from"

type redirect struct {
	src string
	dst string

	srcVMA uint64
	dstVMA uint64
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[redirects] error: %s\n", err.Error())
	os.Exit(1)
}

// modulePath returns the module path declared by the go.mod file in root.
func modulePath(root string) (string, error) {
	f, err := os.Open(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", errors.Wrap(err, "reading module path")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[0] == "module" {
			return strings.Trim(fields[1], `"`), nil
		}
	}
	if err = scanner.Err(); err != nil {
		return "", errors.Wrap(err, "reading module path")
	}

	return "", errors.Errorf("%s: missing module directive", filepath.Join(root, "go.mod"))
}

func collectGoFiles(root string) ([]string, error) {
	var goFiles []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}

		if filepath.Ext(path) == ".go" && !strings.HasSuffix(path, "_test.go") {
			goFiles = append(goFiles, path)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", root)
	}

	return goFiles, nil
}

// findRedirects parses goFiles (paths relative to the module root) and
// returns the redirects they declare. Target names are qualified with the
// package import path.
func findRedirects(modPath string, goFiles []string) ([]*redirect, error) {
	var redirects []*redirect

	for _, goFile := range goFiles {
		fset := token.NewFileSet()

		f, err := parser.ParseFile(fset, goFile, nil, parser.ParseComments)
		if err != nil {
			return nil, errors.Wrap(err, goFile)
		}

		pkgPath := modPath
		if dir := filepath.ToSlash(filepath.Dir(goFile)); dir != "." {
			pkgPath += "/" + dir
		}

		for _, decl := range f.Decls {
			fnDecl, ok := decl.(*ast.FuncDecl)
			if !ok || fnDecl.Doc == nil || fnDecl.Recv != nil {
				continue
			}

			for _, comment := range fnDecl.Doc.List {
				if !strings.HasPrefix(comment.Text, redirectDirective) {
					continue
				}

				fqName := pkgPath + "." + fnDecl.Name.Name

				fields := strings.Fields(comment.Text)
				if len(fields) != 2 || fields[0] != redirectDirective {
					return nil, errors.Errorf("malformed go:redirect-from syntax for %q", fqName)
				}

				redirects = append(redirects, &redirect{
					src: fields[1],
					dst: fqName,
				})
			}
		}
	}

	return redirects, nil
}

func elfRedirectTableOffset(imgFile string) (uint64, error) {
	f, err := elf.Open(imgFile)
	if err != nil {
		return 0, errors.Wrap(err, imgFile)
	}
	defer f.Close()

	redirectsSection := f.Section(".goredirectstbl")
	if redirectsSection == nil {
		return 0, errors.Errorf("%s: missing .goredirectstbl section", imgFile)
	}

	return redirectsSection.Offset, nil
}

// writeRedirectTable encodes the table as (src, dst) little-endian address
// pairs.
func writeRedirectTable(w io.Writer, redirects []*redirect) error {
	for _, redirect := range redirects {
		if err := binary.Write(w, binary.LittleEndian, [2]uint64{redirect.srcVMA, redirect.dstVMA}); err != nil {
			return errors.Wrapf(err, "writing redirect for %s", redirect.src)
		}
	}
	return nil
}

func elfWriteRedirectTable(redirects []*redirect, imgFile string) error {
	redirectTableOffset, err := elfRedirectTableOffset(imgFile)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(imgFile, os.O_WRONLY, 0)
	if err != nil {
		return errors.Wrap(err, imgFile)
	}
	defer f.Close()

	if _, err = f.Seek(int64(redirectTableOffset), io.SeekStart); err != nil {
		return errors.Wrap(err, imgFile)
	}

	return writeRedirectTable(f, redirects)
}

// resolveRedirectSymbols fills in the addresses of both ends of each redirect.
func resolveRedirectSymbols(redirects []*redirect, symbols []elf.Symbol) error {
	for _, redirect := range redirects {
		for _, symbol := range symbols {
			if symbol.Name == redirect.src {
				redirect.srcVMA = symbol.Value
			}
			if symbol.Name == redirect.dst {
				redirect.dstVMA = symbol.Value
			}
		}

		switch {
		case redirect.srcVMA == 0:
			return errors.Errorf("could not locate address of %q", redirect.src)
		case redirect.dstVMA == 0:
			return errors.Errorf("could not locate address of %q", redirect.dst)
		}
	}

	return nil
}

func elfResolveRedirectSymbols(redirects []*redirect, imgFile string) error {
	f, err := elf.Open(imgFile)
	if err != nil {
		return errors.Wrap(err, imgFile)
	}
	defer f.Close()

	symbols, err := f.Symbols()
	if err != nil {
		return errors.Wrap(err, imgFile)
	}

	return errors.Wrap(resolveRedirectSymbols(redirects, symbols), imgFile)
}

func main() {
	flag.Parse()

	modPath, err := modulePath(".")
	if err != nil {
		exit(errors.Wrap(err, "this tool must be run from the module root"))
	}

	if len(flag.Args()) == 0 {
		exit(errors.New("missing command"))
	}

	cmd := flag.Arg(0)
	var imgFile string
	switch cmd {
	case "count":
	case "populate-table":
		if len(flag.Args()) != 2 {
			exit(errors.New("populate-table requires the path to the kernel image as an argument"))
		}
		imgFile = flag.Arg(1)
	default:
		exit(errors.Errorf("unknown command %q", cmd))
	}

	goFiles, err := collectGoFiles("kernel")
	if err != nil {
		exit(err)
	}

	redirects, err := findRedirects(modPath, goFiles)
	if err != nil {
		exit(err)
	}

	if cmd == "count" {
		fmt.Printf("%d", len(redirects))
		return
	}

	if err = elfResolveRedirectSymbols(redirects, imgFile); err != nil {
		exit(err)
	}

	if err = elfWriteRedirectTable(redirects, imgFile); err != nil {
		exit(err)
	}
}
