package mzidentml

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testMzid = `<?xml version="1.0" encoding="UTF-8"?>
<MzIdentML xmlns="http://psidev.info/psi/pi/mzIdentML/1.1" version="1.1.0">
  <SequenceCollection>
    <Peptide id="Pep_1">
      <PeptideSequence>PEPTIDE</PeptideSequence>
    </Peptide>
    <Peptide id="Pep_2">
      <PeptideSequence>ACDEFGK</PeptideSequence>
      <Modification location="2" monoisotopicMassDelta="57.021464"/>
    </Peptide>
  </SequenceCollection>
  <DataCollection>
    <Inputs>
      <SpectraData location="/data/runs/sample01.mzML" id="SID_1"/>
    </Inputs>
    <AnalysisData>
      <SpectrumIdentificationList id="SIL_1">
        <SpectrumIdentificationResult id="SIR_1" spectrumID="controllerType=0 controllerNumber=1 scan=100" spectraData_ref="SID_1">
          <SpectrumIdentificationItem id="SII_1_1" chargeState="2" experimentalMassToCharge="400.687" calculatedMassToCharge="400.688" peptide_ref="Pep_1" rank="1" passThreshold="true">
            <cvParam accession="MS:1002050" name="MS-GF:DeNovoScore" value="85"/>
            <cvParam accession="MS:1002052" name="MS-GF:SpecEValue" value="1.5e-12"/>
            <cvParam accession="MS:1002053" name="MS-GF:EValue" value="3.2e-5"/>
            <cvParam accession="MS:1002054" name="MS-GF:QValue" value="0.001"/>
            <cvParam accession="MS:1002055" name="MS-GF:PepQValue" value="0.002"/>
            <userParam name="IsotopeError" value="1"/>
          </SpectrumIdentificationItem>
          <SpectrumIdentificationItem id="SII_1_2" chargeState="3" experimentalMassToCharge="267.5" calculatedMassToCharge="267.46" peptide_ref="Pep_2" rank="2" passThreshold="true">
            <cvParam accession="MS:1002052" name="MS-GF:SpecEValue" value="4.0e-9"/>
          </SpectrumIdentificationItem>
          <cvParam accession="MS:1001115" name="scan number(s)" value="100"/>
        </SpectrumIdentificationResult>
      </SpectrumIdentificationList>
    </AnalysisData>
  </DataCollection>
</MzIdentML>`

func TestRead(t *testing.T) {
	res, err := Read(context.Background(), strings.NewReader(testMzid))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.SpectraFile != "/data/runs/sample01.mzML" {
		t.Errorf("SpectraFile = %q", res.SpectraFile)
	}
	want := []Identification{
		{
			ScanNumber:  100,
			PepSeq:      "PEPTIDE",
			Charge:      2,
			CalcMz:      400.688,
			PrecursorMz: 400.687,
			DeNovoScore: 85,
			SpecEValue:  1.5e-12,
			EValue:      3.2e-5,
			QValue:      0.001,
			PepQValue:   0.002,
			IsotopeErr:  1,
		},
		{
			ScanNumber:  100,
			PepSeq:      "ACDEFGK",
			Mods:        []Modification{{MassDelta: 57.021464, Location: 2}},
			Charge:      3,
			CalcMz:      267.46,
			PrecursorMz: 267.5,
			SpecEValue:  4.0e-9,
		},
	}
	if diff := cmp.Diff(want, res.Idents); diff != "" {
		t.Errorf("identifications mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Read(ctx, strings.NewReader(testMzid))
	if err != context.Canceled {
		t.Errorf("Read with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestReadUnknownPeptideRef(t *testing.T) {
	bad := strings.Replace(testMzid, `peptide_ref="Pep_1"`, `peptide_ref="Pep_404"`, 1)
	_, err := Read(context.Background(), strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for dangling peptide_ref")
	}
}

func TestReadMalformedScoreValue(t *testing.T) {
	bad := strings.Replace(testMzid, `value="1.5e-12"`, `value="not-a-number"`, 1)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	res, err := Read(context.Background(), strings.NewReader(bad))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(res.Idents) != 2 {
		t.Fatalf("got %d identifications, want 2", len(res.Idents))
	}
	if res.Idents[0].SpecEValue != 0 {
		t.Errorf("SpecEValue = %g, want 0", res.Idents[0].SpecEValue)
	}
	if !strings.Contains(buf.String(), "MS-GF:SpecEValue") {
		t.Errorf("no warning logged for malformed score, log: %q", buf.String())
	}
}

func TestScanNumberFromSpectrumID(t *testing.T) {
	sir := xmlSpecIdentResult{SpectrumID: "controllerType=0 controllerNumber=1 scan=2025"}
	if n := sir.scanNumber(); n != 2025 {
		t.Errorf("scanNumber = %d, want 2025", n)
	}
	sir = xmlSpecIdentResult{SpectrumID: "index=7"}
	if n := sir.scanNumber(); n != -1 {
		t.Errorf("scanNumber = %d, want -1", n)
	}
}
