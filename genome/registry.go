package genome

// Chromosome sizes as downloaded from UCSC. Only the canonical chromosomes
// of each assembly are bundled; haplotype and *_random contigs are omitted.

var registry = map[string]Sizes{
	"dm3": {
		{Chrom: "chr2L", End: 23011544},
		{Chrom: "chr2R", End: 21146708},
		{Chrom: "chr3L", End: 24543557},
		{Chrom: "chr3R", End: 27905053},
		{Chrom: "chr4", End: 1351857},
		{Chrom: "chrX", End: 22422827},
		{Chrom: "chr2LHet", End: 368872},
		{Chrom: "chr2RHet", End: 3288761},
		{Chrom: "chr3LHet", End: 2555491},
		{Chrom: "chr3RHet", End: 2517507},
		{Chrom: "chrM", End: 19517},
		{Chrom: "chrU", End: 10049037},
		{Chrom: "chrUextra", End: 29004656},
		{Chrom: "chrXHet", End: 204112},
		{Chrom: "chrYHet", End: 347038},
	},
	"mm9": {
		{Chrom: "chr1", End: 197195432},
		{Chrom: "chr2", End: 181748087},
		{Chrom: "chr3", End: 159599783},
		{Chrom: "chr4", End: 155630120},
		{Chrom: "chr5", End: 152537259},
		{Chrom: "chr6", End: 149517037},
		{Chrom: "chr7", End: 152524553},
		{Chrom: "chr8", End: 131738871},
		{Chrom: "chr9", End: 124076172},
		{Chrom: "chr10", End: 129993255},
		{Chrom: "chr11", End: 121843856},
		{Chrom: "chr12", End: 121257530},
		{Chrom: "chr13", End: 120284312},
		{Chrom: "chr14", End: 125194864},
		{Chrom: "chr15", End: 103494974},
		{Chrom: "chr16", End: 98319150},
		{Chrom: "chr17", End: 95272651},
		{Chrom: "chr18", End: 90772031},
		{Chrom: "chr19", End: 61342430},
		{Chrom: "chrX", End: 166650296},
		{Chrom: "chrY", End: 15902555},
	},
	"hg18": {
		{Chrom: "chr1", End: 247249719},
		{Chrom: "chr2", End: 242951149},
		{Chrom: "chr3", End: 199501827},
		{Chrom: "chr4", End: 191273063},
		{Chrom: "chr5", End: 180857866},
		{Chrom: "chr6", End: 170899992},
		{Chrom: "chr7", End: 158821424},
		{Chrom: "chr8", End: 146274826},
		{Chrom: "chr9", End: 140273252},
		{Chrom: "chr10", End: 135374737},
		{Chrom: "chr11", End: 134452384},
		{Chrom: "chr12", End: 132349534},
		{Chrom: "chr13", End: 114142980},
		{Chrom: "chr14", End: 106368585},
		{Chrom: "chr15", End: 100338915},
		{Chrom: "chr16", End: 88827254},
		{Chrom: "chr17", End: 78774742},
		{Chrom: "chr18", End: 76117153},
		{Chrom: "chr19", End: 63811651},
		{Chrom: "chr20", End: 62435964},
		{Chrom: "chr21", End: 46944323},
		{Chrom: "chr22", End: 49691432},
		{Chrom: "chrX", End: 154913754},
		{Chrom: "chrY", End: 57772954},
	},
	"hg19": {
		{Chrom: "chr1", End: 249250621},
		{Chrom: "chr2", End: 243199373},
		{Chrom: "chr3", End: 198022430},
		{Chrom: "chr4", End: 191154276},
		{Chrom: "chr5", End: 180915260},
		{Chrom: "chr6", End: 171115067},
		{Chrom: "chr7", End: 159138663},
		{Chrom: "chr8", End: 146364022},
		{Chrom: "chr9", End: 141213431},
		{Chrom: "chr10", End: 135534747},
		{Chrom: "chr11", End: 135006516},
		{Chrom: "chr12", End: 133851895},
		{Chrom: "chr13", End: 115169878},
		{Chrom: "chr14", End: 107349540},
		{Chrom: "chr15", End: 102531392},
		{Chrom: "chr16", End: 90354753},
		{Chrom: "chr17", End: 81195210},
		{Chrom: "chr18", End: 78077248},
		{Chrom: "chr19", End: 59128983},
		{Chrom: "chr20", End: 63025520},
		{Chrom: "chr21", End: 48129895},
		{Chrom: "chr22", End: 51304566},
		{Chrom: "chrX", End: 155270560},
		{Chrom: "chrY", End: 59373566},
	},
}
