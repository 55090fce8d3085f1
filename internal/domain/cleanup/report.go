package cleanup

import (
	"fmt"
	"io"
	"strings"
)

const rulerWidth = 60

// PrintFolders выводит список папок и объявляет поиск по ключевому слову.
func PrintFolders(w io.Writer, folders []Folder, keyword string) {
	fmt.Fprintf(w, "\nTotal folders found: %d\n", len(folders))
	for _, f := range folders {
		fmt.Fprintf(w, " - %s (%d chats)\n", f.Title, f.Size())
	}
	fmt.Fprintf(w, "\nSearching for folders containing %q...\n\n", keyword)
}

// PrintMatched выводит совпавшие папки и итоговый размер keep-set.
func PrintMatched(w io.Writer, matched []Folder, keep KeepSet) {
	for _, f := range matched {
		fmt.Fprintf(w, "✓ Found matching folder: %q with %d chats\n", f.Title, f.Size())
	}
	fmt.Fprintf(w, "\nTotal chats to keep: %d\n", keep.Len())
}

// PrintPlan выводит оставляемые диалоги и план удаления с меткой типа.
func PrintPlan(w io.Writer, plan Plan) {
	for _, d := range plan.Kept {
		fmt.Fprintf(w, "✓ Keeping: %s\n", d.Name)
	}

	ruler := strings.Repeat("=", rulerWidth)
	fmt.Fprintf(w, "\n%s\n", ruler)
	fmt.Fprintf(w, "CHATS TO BE REMOVED (%d total):\n", len(plan.Remove))
	fmt.Fprintln(w, ruler)
	for _, r := range plan.Remove {
		fmt.Fprintf(w, "  [%s] %s\n", r.Category, r.Name())
	}
	fmt.Fprintln(w, ruler)
}
