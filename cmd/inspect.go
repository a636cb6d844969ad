package cmd

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/hydrosuite/qualw2/internal/config"
)

var (
	inspectField string
	inspectJSON  bool
	inspectQuery string
)

func init() {
	inspectCmd.Flags().StringVar(&inspectField, "field", "", "print a single field by name (aliases resolved)")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "emit the decoded file as JSON")
	inspectCmd.Flags().StringVar(&inspectQuery, "query", "", "JSONPath query over the decoded file (implies --json)")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <w2_con.csv>",
	Short: "Decode a control file and print its contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, warns, err := config.DecodeFile(args[0])
		for _, w := range warns {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
		if err != nil {
			return err
		}

		if inspectField != "" {
			v, err := f.Lookup(inspectField)
			if err != nil {
				return err
			}
			fmt.Println(oj.JSON(v))
			return nil
		}

		if inspectQuery != "" {
			x, err := jp.ParseString(inspectQuery)
			if err != nil {
				return fmt.Errorf("parse query: %w", err)
			}
			for _, m := range x.Get(inspectDoc(f)) {
				fmt.Println(oj.JSON(m, 2))
			}
			return nil
		}

		if inspectJSON {
			fmt.Println(oj.JSON(inspectDoc(f), 2))
			return nil
		}

		for i := range f.Sections {
			s := &f.Sections[i]
			fmt.Printf("%s\n", s.Name)
			for _, name := range s.FieldNames() {
				v, _ := s.Field(name)
				fmt.Printf("  %-10s %v\n", name, v)
			}
		}
		return nil
	},
}

// inspectDoc flattens a decoded control file into plain maps and slices so
// JSONPath queries and the JSON encoder see only generic data.
func inspectDoc(f *config.File) map[string]any {
	sections := make([]any, 0, len(f.Sections))
	for i := range f.Sections {
		s := &f.Sections[i]
		fields := map[string]any{}
		for _, name := range s.FieldNames() {
			v, _ := s.Field(name)
			fields[name] = v
		}
		sections = append(sections, map[string]any{
			"name":   s.Name,
			"fields": fields,
		})
	}
	return map[string]any{
		"title":    f.Title(),
		"sections": sections,
	}
}
