package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"github.com/xuri/excelize/v2"
)

// ExtractPictures lists the pictures anchored on every sheet of an xlsx file.
// Pictures are returned in anchor order (row, then column).
func ExtractPictures(xlsxPath string) (models.SheetPictures, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sheetDrawingMap, err := getSheetDrawingMap(&r.Reader)
	if err != nil {
		return nil, err
	}

	result := make(models.SheetPictures)
	for sheetName, drawingPath := range sheetDrawingMap {
		drawingXML, err := readZipFile(&r.Reader, drawingPath)
		if err != nil {
			return nil, err
		}
		pictures := parseDrawingXML(drawingXML)
		sort.SliceStable(pictures, func(i, j int) bool {
			if pictures[i].Row != pictures[j].Row {
				return pictures[i].Row < pictures[j].Row
			}
			return pictures[i].Col < pictures[j].Col
		})
		result[sheetName] = pictures
	}

	return result, nil
}

// getSheetDrawingMap returns a mapping of sheet names to their drawing XML paths.
func getSheetDrawingMap(r *zip.Reader) (map[string]string, error) {
	result := make(map[string]string)

	// Read workbook.xml to get sheet names and rIds
	workbookXML, err := readZipFile(r, "xl/workbook.xml")
	if err != nil || workbookXML == nil {
		return result, err
	}

	sheetsInfo := parseWorkbookSheets(workbookXML)
	if len(sheetsInfo) == 0 {
		return result, nil
	}

	wbRelsXML, err := readZipFile(r, "xl/_rels/workbook.xml.rels")
	if err != nil || wbRelsXML == nil {
		return result, err
	}

	sheetFiles := parseWorkbookRels(wbRelsXML, sheetsInfo)

	for sheetName, sheetPath := range sheetFiles {
		relsPath := strings.Replace(sheetPath, "worksheets/", "worksheets/_rels/", 1)
		relsPath = strings.Replace(relsPath, ".xml", ".xml.rels", 1)

		sheetRelsXML, err := readZipFile(r, relsPath)
		if err != nil || sheetRelsXML == nil {
			continue
		}

		if drawingPath := findDrawingRelationship(sheetRelsXML); drawingPath != "" {
			result[sheetName] = resolveRelativePath(drawingPath, "xl/drawings")
		}
	}

	return result, nil
}

// parseDrawingXML returns the pictures declared in a drawing part.
func parseDrawingXML(data []byte) []models.Picture {
	var pictures []models.Picture

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		if se, ok := token.(xml.StartElement); ok {
			switch se.Name.Local {
			case "twoCellAnchor", "oneCellAnchor":
				if pic, ok := parseAnchor(decoder); ok {
					pictures = append(pictures, pic)
				}
			}
		}
	}

	return pictures
}

// parseAnchor consumes one anchor element. It reports false when the anchor
// holds something other than a picture.
func parseAnchor(decoder *xml.Decoder) (models.Picture, bool) {
	var pic models.Picture
	isPicture := false
	hasExt := false
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return pic, false
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "from":
				pic.Col, pic.Row = parseMarker(decoder)
				continue
			case "pic":
				isPicture = true
			case "cNvPr":
				pic.Name = attrValue(t, "name")
			case "ext":
				if cx := attrValue(t, "cx"); cx != "" && !hasExt {
					hasExt = true
					pic.W = EMUToPixels(parseInt64(cx))
					pic.H = EMUToPixels(parseInt64(attrValue(t, "cy")))
				}
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	if !isPicture {
		return pic, false
	}
	pic.Cell, _ = excelize.CoordinatesToCellName(pic.Col, pic.Row)
	return pic, true
}

// parseMarker reads an xdr:from marker and returns 1-based column and row.
func parseMarker(decoder *xml.Decoder) (col, row int) {
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "col":
				text, _ := readElementText(decoder)
				col = int(parseInt64(text)) + 1
				continue
			case "row":
				text, _ := readElementText(decoder)
				row = int(parseInt64(text)) + 1
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return
}

// Helper functions

func attrValue(se xml.StartElement, name string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return v
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var text string
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text, err
		}
		switch t := token.(type) {
		case xml.CharData:
			text += string(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text, nil
}

func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "../") {
		clean := target
		for strings.HasPrefix(clean, "../") {
			clean = strings.TrimPrefix(clean, "../")
		}
		return "xl/" + clean
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return baseDir + "/" + target
}

func parseWorkbookSheets(data []byte) map[string]string {
	result := make(map[string]string) // rId -> sheet name
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			name, rID := attrValue(se, "name"), attrValue(se, "id")
			if name != "" && rID != "" {
				result[rID] = name
			}
		}
	}

	return result
}

func parseWorkbookRels(data []byte, sheetsInfo map[string]string) map[string]string {
	result := make(map[string]string) // sheet name -> file path
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			rID, target := attrValue(se, "Id"), attrValue(se, "Target")
			if sheetName, ok := sheetsInfo[rID]; ok && strings.Contains(strings.ToLower(target), "worksheet") {
				result[sheetName] = resolveRelativePath(target, "xl")
			}
		}
	}

	return result
}

func findDrawingRelationship(data []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			relType, target := attrValue(se, "Type"), attrValue(se, "Target")
			if strings.HasSuffix(strings.ToLower(relType), "/drawing") {
				return target
			}
		}
	}

	return ""
}
