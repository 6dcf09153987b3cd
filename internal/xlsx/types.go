package xlsx

import (
	"encoding/xml"
	"strings"
)

type workbookXML struct {
	XMLName xml.Name `xml:"workbook"`
	Sheets  struct {
		Sheet []struct {
			Name string `xml:"name,attr"`
			RID  string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

type relationshipsXML struct {
	XMLName      xml.Name `xml:"Relationships"`
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
		Type   string `xml:"Type,attr"`
	} `xml:"Relationship"`
}

type sharedStringsXML struct {
	XMLName xml.Name        `xml:"sst"`
	Items   []stringItemXML `xml:"si"`
}

// stringItemXML is either a plain <t> or a list of rich-text runs.
type stringItemXML struct {
	T    *string  `xml:"t"`
	Runs []runXML `xml:"r"`
}

type runXML struct {
	T string `xml:"t"`
}

func (si stringItemXML) text() string {
	if si.T != nil {
		return *si.T
	}
	var b strings.Builder
	for _, r := range si.Runs {
		b.WriteString(r.T)
	}
	return b.String()
}

type worksheetXML struct {
	XMLName   xml.Name `xml:"worksheet"`
	SheetData struct {
		Rows []rowXML `xml:"row"`
	} `xml:"sheetData"`
}

type rowXML struct {
	R     int       `xml:"r,attr"`
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string         `xml:"r,attr"`
	T  string         `xml:"t,attr"`
	V  string         `xml:"v"`
	Is *stringItemXML `xml:"is"`
}
