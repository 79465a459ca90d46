package testutil

import (
	"encoding/base64"
	"strings"
)

// AssetMarkup is an embedded metadata island exercising every mapped
// asset property.
const AssetMarkup = `<record>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:tna="http://nationalarchives.gov.uk/metadata/tna#">
  <rdf:Description>
    <tna:summary>Letters to the fleet</tna:summary>
    <tna:physicalItemCount>2</tna:physicalItemCount>
    <tna:heldBy>The National Archives, Kew</tna:heldBy>
    <tna:place>Portsmouth</tna:place>
    <tna:witness rdf:parseType="Resource"><tna:name>John Smith</tna:name><tna:description>Witness to seal</tna:description></tna:witness>
    <tna:kinship>son of William Smith</tna:kinship>
    <tna:sealDate>1916</tna:sealDate>
    <tna:dimensions>5.5 x 3.2</tna:dimensions>
    <tna:relatedMaterial rdf:parseType="Resource"><tna:description>See also the seal</tna:description><tna:reference>ADM 1/2</tna:reference></tna:relatedMaterial>
  </rdf:Description>
</rdf:RDF>
</record>`

// VariationFileMarkup is an embedded metadata island for a variation file.
const VariationFileMarkup = `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:tna="http://nationalarchives.gov.uk/metadata/tna#">
  <rdf:Description>
    <tna:fileFormat>PDF</tna:fileFormat>
    <tna:language>English</tna:language>
    <tna:scanDate>02/03/2015</tna:scanDate>
  </rdf:Description>
</rdf:RDF>`

// Legislation is the IRI of the legislation cited by the fixtures.
const Legislation = "http://www.legislation.gov.uk/id/ukpga/2000/36"

// RecordLines holds one JSON-lines document per record kind. Every record
// resolves except variation V9, whose asset does not exist.
var RecordLines = map[string]string{
	"access-condition": lines(
		`{"id":"A","name":"Open on transfer"}`,
		`{"id":"C","name":"Closed"}`,
	),
	"legislation": lines(
		`{"id":"` + Legislation + `","section":"40(2)"}`,
	),
	"ground-for-retention": lines(
		`{"id":"R1","description":"Retained under section 3(4)"}`,
	),
	"subset": lines(
		`{"id":"ADM","directory":"ADM","transferringBody":"Admiralty","creatingBody":"Admiralty"}`,
		`{"id":"ADM 1","parentId":"ADM","directory":"ADM/1"}`,
	),
	"asset": lines(
		`{"id":"ADM 1/2","subsetId":"ADM 1","name":"Seal","coveringDates":"c 1916"}`,
		`{"id":"ADM 1/1","subsetId":"ADM 1","name":"Letter book","description":"Letters",`+
			`"legalStatus":"Public Record","coveringDates":"1914-1918","language":"English",`+
			`"xml":"`+base64.StdEncoding.EncodeToString([]byte(AssetMarkup))+`"}`,
	),
	"variation": lines(
		`{"id":"V1","assetId":"ADM 1/1","name":"ADM_1_1.pdf","note":"Scanned"}`,
		`{"id":"V9","assetId":"ADM 9/9","name":"orphan.pdf"}`,
	),
	"variation-file": lines(
		`{"id":"V1","location":"content/ADM_1_1.pdf","checksum":"ab12","size":2048,`+
			`"xml":"`+base64.StdEncoding.EncodeToString([]byte(VariationFileMarkup))+`"}`,
	),
	"sensitivity-review": lines(
		`{"id":"SR1","targetType":"asset","targetId":"ADM 1/1","date":"2020-01-02T10:00:00Z",`+
			`"sensitiveName":"John Smith","accessConditionCode":"C","legislations":["`+Legislation+`"],`+
			`"reviewDate":"2030-01-01","restrictionStartDate":"2020-01-01","restrictionDuration":10,`+
			`"restrictionEndYear":2030,"groundForRetentionCode":"R1","instrumentNumber":123,"previousId":"SR0"}`,
	),
	"change": lines(
		`{"id":"CH1","targetType":"asset","targetId":"ADM 1/1","timestamp":"2021-05-04T09:30:00Z",`+
			`"description":"Title corrected","operator":"jbloggs"}`,
	),
}

func lines(records ...string) string {
	return strings.Join(records, "\n") + "\n"
}
